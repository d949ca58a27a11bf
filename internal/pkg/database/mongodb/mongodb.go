// Package mongodb backs the parameter store with a MongoDB collection of
// technology parameter documents, one document per technology/subtype.
package mongodb

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wtrsys/zeroflow/internal/pkg/database"
)

type config struct {
	URI        string `json:"URI"`
	Port       string `json:"Port"`
	Database   string `json:"Database"`
	Collection string `json:"Collection"`
	TimeoutSec int    `json:"TimeoutSec"`
}

// Database is a MongoDB-backed parameter store.
type Database struct {
	config config
}

// paramDoc is the stored shape of one technology/subtype parameter set.
// Subtype documents are complete; no overlay against the default document
// happens at read time.
type paramDoc struct {
	Technology string                    `bson:"technology"`
	Subtype    string                    `bson:"subtype"`
	Capital    map[string]database.Entry `bson:"capital_cost"`
	Parameters map[string]database.Entry `bson:"parameters"`
}

// New builds a store from a JSON config file.
func New(configPath string) (Database, error) {
	raw, err := ioutil.ReadFile(configPath)
	if err != nil {
		return Database{}, err
	}
	cfg := config{TimeoutSec: 10}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Database{}, err
	}
	return Database{config: cfg}, nil
}

// GetUnitOperationParameters fetches the parameter document for the
// technology/subtype combination.
func (d Database) GetUnitOperationParameters(techType string, subtype string) (database.Parameters, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(d.config.TimeoutSec)*time.Second)
	defer cancel()

	client, err := mongo.NewClient(options.Client().ApplyURI(d.config.URI + ":" + d.config.Port))
	if err != nil {
		return database.Parameters{}, err
	}
	if err := client.Connect(ctx); err != nil {
		return database.Parameters{}, err
	}
	defer client.Disconnect(ctx)

	coll := client.Database(d.config.Database).Collection(d.config.Collection)

	doc := paramDoc{}
	filter := bson.M{"technology": techType, "subtype": subtype}
	err = coll.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		// distinguish a missing subtype from a missing technology
		n, cerr := coll.CountDocuments(ctx, bson.M{"technology": techType})
		if cerr == nil && n > 0 {
			return database.Parameters{}, fmt.Errorf("%w: %q for technology %q", database.ErrUnknownSubtype, subtype, techType)
		}
		return database.Parameters{}, fmt.Errorf("%w: %q", database.ErrUnknownTechnology, techType)
	}
	if err != nil {
		return database.Parameters{}, err
	}

	return database.NewParameters(techType, subtype, doc.Parameters, doc.Capital), nil
}
