package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/strata-api/strata/internal/document"
)

// Mongo is the MongoDB-backed Store. Each resource maps to a collection of
// the same name; identities are ObjectID hex strings surfaced under the
// document's "id" field.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func (m *Mongo) FindOne(ctx context.Context, resource string, lookup map[string]any) (document.Document, error) {
	var raw bson.M
	err := m.db.Collection(resource).FindOne(ctx, toFilter(lookup)).Decode(&raw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find %s: %w", resource, err)
	}
	return fromBSON(raw), nil
}

func (m *Mongo) Insert(ctx context.Context, resource string, docs []document.Document) ([]string, error) {
	rows := make([]any, len(docs))
	for i, doc := range docs {
		rows[i] = toBSON(doc)
	}
	res, err := m.db.Collection(resource).InsertMany(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", resource, err)
	}
	ids := make([]string, len(res.InsertedIDs))
	for i, raw := range res.InsertedIDs {
		if oid, ok := raw.(primitive.ObjectID); ok {
			ids[i] = oid.Hex()
		} else {
			ids[i] = fmt.Sprintf("%v", raw)
		}
	}
	return ids, nil
}

func (m *Mongo) Replace(ctx context.Context, resource string, id string, doc document.Document) error {
	res, err := m.db.Collection(resource).ReplaceOne(ctx, toFilter(map[string]any{document.FieldID: id}), toBSON(doc))
	if err != nil {
		return fmt.Errorf("replace %s: %w", resource, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// toFilter maps the pipeline's lookup onto a Mongo filter, translating the
// "id" field to _id (ObjectID when the value parses as one).
func toFilter(lookup map[string]any) bson.M {
	filter := bson.M{}
	for field, value := range lookup {
		if field == document.FieldID {
			if s, ok := value.(string); ok {
				if oid, err := primitive.ObjectIDFromHex(s); err == nil {
					filter["_id"] = oid
					continue
				}
			}
			filter["_id"] = value
			continue
		}
		filter[field] = value
	}
	return filter
}

func toBSON(doc document.Document) bson.M {
	out := bson.M{}
	for k, v := range doc {
		if k == document.FieldID {
			continue
		}
		out[k] = v
	}
	return out
}

// fromBSON re-normalizes a stored document: _id becomes the "id" hex string
// and BSON datetimes come back as naive-UTC time.Time at second precision,
// so fingerprints are identical across reads.
func fromBSON(raw bson.M) document.Document {
	doc := document.Document{}
	for k, v := range raw {
		if k == "_id" {
			if oid, ok := v.(primitive.ObjectID); ok {
				doc[document.FieldID] = oid.Hex()
			} else {
				doc[document.FieldID] = fmt.Sprintf("%v", v)
			}
			continue
		}
		doc[k] = fromBSONValue(v)
	}
	return doc
}

func fromBSONValue(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC().Truncate(time.Second)
	case time.Time:
		return t.UTC().Truncate(time.Second)
	case bson.M:
		out := map[string]any{}
		for k, e := range t {
			out[k] = fromBSONValue(e)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromBSONValue(e)
		}
		return out
	case int32:
		return int64(t)
	default:
		return v
	}
}
