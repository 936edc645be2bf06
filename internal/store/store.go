package store

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrBadPayload = errors.New("value is not serializable")

// Snapshot — полное текущее состояние коллекции: ключ -> сырой JSON.
// Хранилище присылает его целиком при каждом изменении, не диффы.
type Snapshot map[string]json.RawMessage

// Store — общее изменяемое хранилище. Каждая запись — это
// last-writer-wins перезапись по адресу (коллекция, ключ), без
// оптимистичных блокировок. Подписка отдаёт снапшот сразу и затем
// на каждое изменение коллекции.
type Store interface {
	// Set сериализует value и перезаписывает (collection, key)
	Set(ctx context.Context, collection, key string, value interface{}) error

	// Get читает одну запись; ok == false, если записи нет
	Get(ctx context.Context, collection, key string) (json.RawMessage, bool, error)

	// Patch накладывает fields поверх текущего JSON-объекта по адресу.
	// Отсутствующая запись создаётся из одних fields.
	Patch(ctx context.Context, collection, key string, fields map[string]interface{}) error

	// Delete удаляет запись; удаление отсутствующей записи не ошибка
	Delete(ctx context.Context, collection, key string) error

	// DeleteAll необратимо удаляет коллекцию целиком
	DeleteAll(ctx context.Context, collection string) error

	// Subscribe регистрирует интерес к коллекции. Возвращённый cancel
	// останавливает доставку и безопасен для повторных вызовов.
	Subscribe(collection string) (<-chan Snapshot, func())

	// Session открывает сессию с поддержкой disconnect-safe намерений
	Session(id string) Session
}

// Session — привязка клиентской сессии к хранилищу. Зарегистрированные
// намерения хранилище применит само, если сессия пропадёт без Close.
type Session interface {
	// OnDisconnectPatch регистрирует отложенный Patch на случай обрыва
	OnDisconnectPatch(collection, key string, fields map[string]interface{}) error

	// OnDisconnectDelete регистрирует отложенный Delete на случай обрыва
	OnDisconnectDelete(collection, key string) error

	// Close применяет накопленные намерения и снимает регистрацию сессии.
	// Идемпотентен.
	Close(ctx context.Context) error
}
