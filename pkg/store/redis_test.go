package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	store *Redis
	ctx   context.Context
}

func TestRedisSuite(t *testing.T) {
	suite.Run(t, new(RedisSuite))
}

func (s *RedisSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.store = NewRedisWithClient(client, RedisConfig{Key: "lock:eeprom"})
	s.ctx = context.Background()
}

func (s *RedisSuite) TearDownTest() {
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *RedisSuite) TestWriteUsesHashField() {
	s.Require().NoError(s.store.Write(s.ctx, 0x15, '7'))
	s.Equal("55", s.mini.HGet("lock:eeprom", "21"))
}

func (s *RedisSuite) TestCorruptCell() {
	s.mini.HSet("lock:eeprom", "21", "not-a-number")
	_, err := s.store.Read(s.ctx, 0x15)
	s.Error(err)
}

func (s *RedisSuite) TestErase() {
	s.Require().NoError(s.store.Write(s.ctx, 3, 1))
	s.Require().NoError(s.store.Erase(s.ctx))

	b, err := s.store.Read(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal(Erased, b)
}

func (s *RedisSuite) TestServerDown() {
	s.mini.Close()
	_, err := s.store.Read(s.ctx, 3)
	s.Error(err)
}

func (s *RedisSuite) TestDefaultKey() {
	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	r := NewRedisWithClient(client, RedisConfig{})
	defer r.Close()
	s.Require().NoError(r.Write(s.ctx, 1, 9))
	s.Equal("9", s.mini.HGet(DefaultRedisConfig().Key, "1"))
}
