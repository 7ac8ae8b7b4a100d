package localstore

import (
	"encoding/json"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// 编辑器使用的既定键
const (
	KeyEditorContent = "markdown-content"
	KeyDarkMode      = "markdown-dark-mode"
)

// DefaultDarkMode 是主题偏好的默认值
const DefaultDarkMode = true

// Store 是本地持久化适配器：badger 上的键值封装，值以 JSON 文本存储。
// 读写失败只记日志，从不向调用方抛出，读取失败回退到默认值。
type Store struct {
	db *badger.DB
}

// Open 打开指定目录下的本地存储。
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close 关闭底层存储
func (s *Store) Close() error {
	return s.db.Close()
}

// Get 读取键值并反序列化到 T；键不存在、存储不可用或解码失败都回退默认值。
func Get[T any](s *Store, key string, defaultValue T) T {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			logrus.WithError(err).WithField("key", key).Warn("localstore read failed")
		}
		return defaultValue
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("localstore decode failed")
		return defaultValue
	}
	return value
}

// Set 序列化并同步写入键值，失败只记日志。
func Set[T any](s *Store, key string, value T) {
	raw, err := json.Marshal(value)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("localstore encode failed")
		return
	}

	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	}); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("localstore write failed")
	}
}
