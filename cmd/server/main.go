package main

func main() {
	srv := NewServer()
	defer srv.Janitor.Stop()
	srv.Run()
}
