package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// BankMetaKey returns the hash holding count and update time of a stored bank document
func (r *CacheKeyStruct) BankMetaKey(bankKey string) string {
	return fmt.Sprintf("%s:meta", bankKey)
}

// BankUpdatesChannel returns the Redis PubSub channel announcing a replaced bank document
func (r *CacheKeyStruct) BankUpdatesChannel(bankKey string) string {
	return fmt.Sprintf("%s:updates", bankKey)
}

var CacheKey = NewCacheKeyStruct()
