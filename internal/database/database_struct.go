package database

import "gorm.io/gorm"

// Database — обёртка над gorm для данных провайдера личности.
// Профили, треды и всё realtime-состояние живут не здесь, а в общем
// хранилище.
type Database struct {
	db *gorm.DB
}
