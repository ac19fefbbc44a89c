// internal/common/database/database_test.go
package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pawmatch-workers/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newESServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestElasticsearchClient_Ping(t *testing.T) {
	ok := newESServer(t, http.StatusOK)
	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: ok.URL})
	require.NoError(t, err)
	assert.NoError(t, client.Ping(context.Background()))

	down := newESServer(t, http.StatusInternalServerError)
	client, err = NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{down.URL}})
	require.NoError(t, err)
	assert.Error(t, client.Ping(context.Background()))
}

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	client := NewPostgresFromDB(db)
	mock.ExpectPing()
	mock.ExpectClose()

	assert.NoError(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgres_AppliesPoolSettings(t *testing.T) {
	client, err := NewPostgres(config.PostgresConfig{
		Host: "localhost", Port: 5432, Database: "pawmatch", SSLMode: "disable",
		MaxConnections: 7,
	})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 7, client.DB.Stats().MaxOpenConnections)
}

func TestCheckAll(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer redisClient.Close()

	down := newESServer(t, http.StatusInternalServerError)
	esClient, err := NewElasticsearch(config.ElasticsearchConfig{URL: down.URL})
	require.NoError(t, err)

	failures := CheckAll(context.Background(), time.Second, map[string]Pinger{
		"redis":         redisClient,
		"elasticsearch": esClient,
		"postgres":      nil,
	})

	assert.Len(t, failures, 2)
	assert.NotContains(t, failures, "redis")
	assert.Contains(t, failures, "elasticsearch")
	assert.EqualError(t, failures["postgres"], "postgres not configured")
}
