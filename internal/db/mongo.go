package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"movie_keywords/internal/config"
	"movie_keywords/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAuthentication is returned when the server rejects the credentials.
var ErrAuthentication = errors.New("authentication failed")

// codeAuthenticationFailed is the server error code for rejected credentials.
const codeAuthenticationFailed = 18

const defaultTimeout = 10 * time.Second

// moviesProjection limits streamed documents to the fields the filter and
// the keyword sets read.
var moviesProjection = bson.M{
	models.FieldTitle:       1,
	models.FieldURL:         1,
	models.FieldReleaseInfo: 1,
	models.FieldLanguages:   1,
	models.FieldRuntime:     1,
	models.FieldCountries:   1,
	models.FieldRating:      1,
	models.FieldWriters:     1,
	models.FieldDirector:    1,
	models.FieldCastMembers: 1,
}

type MongoDB struct {
	client  *mongo.Client
	movies  *mongo.Collection
	timeout time.Duration
	batch   int32
}

// URI builds the connection string for host and port, unless an explicit
// connection string is configured.
func URI(cfg config.DBConfig) string {
	if cfg.Connection != "" {
		return cfg.Connection
	}
	return "mongodb://" + net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}

// NewMongoDB connects to the server, authenticates when credentials are set
// and selects the movie collection.
func NewMongoDB(ctx context.Context, cfg config.DBConfig) (*MongoDB, error) {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().ApplyURI(URI(cfg))
	if cfg.Username != "" || cfg.Password != "" {
		authSource := cfg.AuthSource
		if authSource == "" {
			authSource = cfg.Database
		}
		opts.SetAuth(options.Credential{
			Username:   cfg.Username,
			Password:   cfg.Password,
			AuthSource: authSource,
		})
	}

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, pingError(err, cfg)
	}

	d := newMongoDB(client.Database(cfg.Database).Collection(cfg.Collection), timeout, cfg.BatchSize)
	d.client = client
	return d, nil
}

func newMongoDB(movies *mongo.Collection, timeout time.Duration, batch int) *MongoDB {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &MongoDB{
		movies:  movies,
		timeout: timeout,
		batch:   int32(batch),
	}
}

// pingError maps a failed ping to ErrAuthentication when the server rejected
// the credentials.
func pingError(err error, cfg config.DBConfig) error {
	if isAuthError(err) {
		return fmt.Errorf("%w for database %s as %q: %v", ErrAuthentication, cfg.Database, cfg.Username, err)
	}
	return fmt.Errorf("can't ping MongoDB: %w", err)
}

func isAuthError(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == codeAuthenticationFailed {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "authentication failed") || strings.Contains(msg, "auth error")
}

// Count returns the number of movies in the collection.
func (d *MongoDB) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	n, err := d.movies.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count documents in %s: %w", d.movies.Name(), err)
	}
	return n, nil
}

// ForEach streams every movie through fn in natural order. A document that
// cannot be decoded aborts the scan, as does an error returned by fn.
func (d *MongoDB) ForEach(ctx context.Context, fn func(models.Movie) error) error {
	opts := options.Find().
		SetProjection(moviesProjection).
		SetNoCursorTimeout(true)
	if d.batch > 0 {
		opts.SetBatchSize(d.batch)
	}

	cursor, err := d.movies.Find(ctx, bson.D{}, opts)
	if err != nil {
		return fmt.Errorf("find movies: %w", err)
	}
	defer cursor.Close(context.Background())

	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("decode movie: %w", err)
		}
		if err := fn(models.Movie(doc)); err != nil {
			return err
		}
	}

	return cursor.Err()
}

func (d *MongoDB) Close() error {
	if d.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}
