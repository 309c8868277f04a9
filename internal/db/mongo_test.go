package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"movie_keywords/internal/config"
	"movie_keywords/internal/models"
)

func TestURI(t *testing.T) {
	assert.Equal(t, "mongodb://127.0.0.1:27017", URI(config.DBConfig{Host: "127.0.0.1", Port: 27017}))
	assert.Equal(t, "mongodb://[::1]:27018", URI(config.DBConfig{Host: "::1", Port: 27018}))
	assert.Equal(t, "mongodb+srv://cluster.example.net", URI(config.DBConfig{
		Connection: "mongodb+srv://cluster.example.net",
		Host:       "ignored",
		Port:       1,
	}))
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, isAuthError(mongo.CommandError{Code: codeAuthenticationFailed, Message: "Authentication failed."}))
	assert.True(t, isAuthError(fmt.Errorf("server selection error: %w",
		errors.New("connection() error occurred during connection handshake: auth error: sasl conversation error"))))
	assert.False(t, isAuthError(mongo.CommandError{Code: 13, Message: "not authorized on imdb"}))
	assert.False(t, isAuthError(errors.New("connection refused")))
}

func TestPingError(t *testing.T) {
	cfg := config.DBConfig{Database: "imdb", Username: "reader"}

	err := pingError(mongo.CommandError{Code: codeAuthenticationFailed, Message: "Authentication failed."}, cfg)
	require.ErrorIs(t, err, ErrAuthentication)
	assert.Contains(t, err.Error(), "imdb")
	assert.Contains(t, err.Error(), `"reader"`)

	refused := errors.New("connection refused")
	err = pingError(refused, cfg)
	require.ErrorIs(t, err, refused)
	assert.NotErrorIs(t, err, ErrAuthentication)
}

func TestMongoDB_CountAndForEach(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "imdb.imdb_data", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(3)}}))

		n, err := newMongoDB(mt.Coll, time.Second, 0).Count(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})

	mt.Run("count error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Message: "not authorized",
			Name:    "Unauthorized",
		}))

		_, err := newMongoDB(mt.Coll, time.Second, 0).Count(context.Background())
		require.Error(mt, err)
	})

	mt.Run("for each streams every document", func(mt *mtest.T) {
		first := mtest.CreateCursorResponse(1, "imdb.imdb_data", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "tt1"},
				{Key: "title", Value: "First"},
				{Key: "rating", Value: bson.D{{Key: "avgScore", Value: "7.0"}}},
			},
			bson.D{{Key: "_id", Value: "tt2"}, {Key: "title", Value: "Second"}},
		)
		next := mtest.CreateCursorResponse(0, "imdb.imdb_data", mtest.NextBatch,
			bson.D{{Key: "_id", Value: "tt3"}, {Key: "title", Value: "Third"}},
		)
		mt.AddMockResponses(first, next)

		var ids, titles []string
		err := newMongoDB(mt.Coll, time.Second, 2).ForEach(context.Background(), func(m models.Movie) error {
			ids = append(ids, m.ID())
			title, _ := m[models.FieldTitle].(string)
			titles = append(titles, title)
			return nil
		})
		require.NoError(mt, err)
		assert.Equal(mt, []string{"tt1", "tt2", "tt3"}, ids)
		assert.Equal(mt, []string{"First", "Second", "Third"}, titles)
	})

	mt.Run("callback error stops the scan", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "imdb.imdb_data", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "tt1"}},
			bson.D{{Key: "_id", Value: "tt2"}},
		))

		stop := errors.New("stop")
		seen := 0
		err := newMongoDB(mt.Coll, time.Second, 0).ForEach(context.Background(), func(models.Movie) error {
			seen++
			return stop
		})
		require.ErrorIs(mt, err, stop)
		assert.Equal(mt, 1, seen)
	})
}
