package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const DefaultFirestoreCollection = "prospector"

// Firestore stores each key as a document <collection>/<key> with the
// fields "data" and "updated_at".
type Firestore struct {
	client     *firestore.Client
	collection string
}

type firestoreDoc struct {
	Data      string    `firestore:"data"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// NewFirestore connects to the given project and database. An empty
// databaseID uses the default database.
func NewFirestore(ctx context.Context, projectID, databaseID, collection string, opts ...option.ClientOption) (*Firestore, error) {
	if projectID == "" {
		return nil, goerr.New("firestore project ID is required")
	}
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	if collection == "" {
		collection = DefaultFirestoreCollection
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID))
	}

	return &Firestore{client: client, collection: collection}, nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

func (f *Firestore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	snap, err := f.client.Collection(f.collection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "no firestore document",
				goerr.V("collection", f.collection), goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to get firestore document",
			goerr.V("collection", f.collection), goerr.V("key", key))
	}

	var doc firestoreDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode firestore document", goerr.V("key", key))
	}
	return []byte(doc.Data), nil
}

func (f *Firestore) Put(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	doc := firestoreDoc{Data: string(data), UpdatedAt: time.Now().UTC()}
	if _, err := f.client.Collection(f.collection).Doc(key).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to set firestore document",
			goerr.V("collection", f.collection), goerr.V("key", key))
	}
	return nil
}
