package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"mentorly/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient is the global MongoDB client instance.
var MongoClient *mongo.Client

// InitDB initializes the MongoDB connection.
func InitDB() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(config.AppConfig.DatabaseURL)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("failed to ping MongoDB: %v", err)
	}
	MongoClient = client
	log.Println("Connected to MongoDB successfully!")
}

// DB returns the application database on the global client.
func DB() *mongo.Database {
	name := config.AppConfig.DatabaseName
	if name == "" {
		name = "mentorly"
	}
	return MongoClient.Database(name)
}

// Disconnect closes the global client, if any.
func Disconnect(ctx context.Context) error {
	if MongoClient == nil {
		return nil
	}
	return MongoClient.Disconnect(ctx)
}

// WithTransaction runs fn inside a multi-document transaction on client.
// fn must use the session context for every operation that belongs to the transaction.
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(sc mongo.SessionContext) error) error {
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}
