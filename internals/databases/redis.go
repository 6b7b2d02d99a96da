package database

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis mengembalikan nil kalau REDIS_URL kosong atau Redis tidak bisa di-ping;
// pemanggil harus siap jalan tanpa cache.
func ConnectRedis() *redis.Client {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		log.Println("⚠️ REDIS_URL kosong, cache billing config dimatikan")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("❌ REDIS_URL tidak valid: %v", err)
		return nil
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("❌ Redis tidak bisa di-ping, cache dimatikan: %v", err)
		_ = rdb.Close()
		return nil
	}

	log.Println("✅ Redis connected.")
	return rdb
}
