package config

import (
	"context"
	"fmt"
	"time"

	influxdb3 "github.com/InfluxCommunity/influxdb3-go/v2/influxdb3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDatabase wraps the MongoDB client and database handle.
type MongoDatabase struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// InfluxDatabase wraps the InfluxDB v3 client used by the metrics recorder.
type InfluxDatabase struct {
	Client   *influxdb3.Client
	Database string
}

// InitMongo connects to MongoDB and verifies the connection.
func InitMongo(cfg *Config) (*MongoDatabase, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(50).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	return &MongoDatabase{
		Client:   client,
		Database: client.Database(cfg.MongoDB),
	}, nil
}

// Close disconnects the MongoDB client.
func (m *MongoDatabase) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

// InitInflux creates the InfluxDB client for run metrics.
func InitInflux(cfg *Config) (*InfluxDatabase, error) {
	client, err := influxdb3.New(influxdb3.ClientConfig{
		Host:     cfg.InfluxURL,
		Token:    cfg.InfluxToken,
		Database: cfg.InfluxDatabase,
	})
	if err != nil {
		return nil, fmt.Errorf("influx client failed: %w", err)
	}

	return &InfluxDatabase{
		Client:   client,
		Database: cfg.InfluxDatabase,
	}, nil
}

// Close shuts down the InfluxDB client.
func (i *InfluxDatabase) Close() error {
	return i.Client.Close()
}
