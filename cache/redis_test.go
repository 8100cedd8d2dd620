package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
)

func TestRedis_GetMissOnNil(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db, "api")

	mock.ExpectGet("api:k").RedisNil()

	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Error("nil reply should be a miss")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRedis_SetThenGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db, "api")
	ctx := context.Background()

	mock.ExpectSet("api:k", []byte("v"), time.Minute).SetVal("OK")
	mock.ExpectGet("api:k").SetVal("v")

	c.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := c.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Errorf("want hit with %q, got %q ok=%v", "v", got, ok)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRedis_NoPrefix(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db, "")

	mock.ExpectGet("k").SetVal("v")

	if got, ok := c.Get(context.Background(), "k"); !ok || string(got) != "v" {
		t.Errorf("unprefixed key lookup failed, got %q ok=%v", got, ok)
	}
}

func TestRedis_ErrorDegradesToMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db, "api")

	mock.ExpectGet("api:k").SetErr(context.DeadlineExceeded)

	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Error("backend error should be a miss, not a failure")
	}
}
