// Package mongo stores accounts in a MongoDB "users" collection.
package mongo

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"credsvc/config"
	"credsvc/internal/domain/lifecycle"
	"credsvc/internal/errors"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"
)

const (
	defaultDatabase  = "userDB"
	collectionName   = "users"
	usernameIndexKey = "username"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New creates a client for the configured URI and returns the users collection.
// The driver connects lazily; the server is pinged and the unique index ensured on start.
func New(params Params) (*mongodriver.Collection, error) {
	uri := params.Config.Database.URI

	dbName, err := databaseName(uri)
	if err != nil {
		return nil, err
	}

	client, err := mongodriver.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create MongoDB client")
	}

	collection := client.Database(dbName).Collection(collectionName)

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				return errors.Wrap(err, "failed to ping MongoDB")
			}

			name, err := collection.Indexes().CreateOne(ctx, usernameIndex())
			if err != nil {
				return errors.Wrap(err, "failed to ensure username index")
			}

			params.Logger.Info("MongoDB ready",
				slog.String("database", dbName),
				slog.String("collection", collectionName),
				slog.String("index", name),
			)

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})

	return collection, nil
}

func usernameIndex() mongodriver.IndexModel {
	return mongodriver.IndexModel{
		Keys: bson.D{{Key: usernameIndexKey, Value: 1}},
		// Unnamed so the server default, username_1, matches an index created by earlier deployments.
		Options: options.Index().SetUnique(true),
	}
}

// databaseName reads the database from the URI path, falling back to userDB.
func databaseName(uri string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", errors.Wrap(err, "invalid MongoDB URI")
	}

	if name := strings.Trim(parsed.Path, "/"); name != "" {
		return name, nil
	}

	return defaultDatabase, nil
}
