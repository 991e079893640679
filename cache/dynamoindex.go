package cache

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// IndexEntry is one row of the DynamoDB cache index: enough to answer
// occupancy and staleness questions about an S3-backed cache entry
// without a HEAD request per object.
type IndexEntry struct {
	Digest       string
	S3Key        string
	NumRegisters uint32
	CreatedAt    time.Time
}

// DynamoIndex is a secondary lookup over an S3Store's contents, one item
// per digest. It never gates a Get/Put on S3Store — S3 remains the
// source of truth for artifact bytes — it only records metadata a build
// farm can query cheaply.
type DynamoIndex struct {
	client *dynamodb.Client
	table  string
}

// NewDynamoIndex loads the default AWS config and constructs a client
// for the given table.
func NewDynamoIndex(ctx context.Context, table string) (*DynamoIndex, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("cache: loading AWS config: %w", err)
	}
	return &DynamoIndex{client: dynamodb.NewFromConfig(cfg), table: table}, nil
}

// Record upserts an index row for the given cache entry.
func (idx *DynamoIndex) Record(ctx context.Context, entry IndexEntry) error {
	item := map[string]types.AttributeValue{
		"digest":        &types.AttributeValueMemberS{Value: entry.Digest},
		"s3_key":        &types.AttributeValueMemberS{Value: entry.S3Key},
		"num_registers": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", entry.NumRegisters)},
		"created_at":    &types.AttributeValueMemberS{Value: entry.CreatedAt.UTC().Format(time.RFC3339)},
	}
	_, err := idx.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &idx.table,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("cache: indexing %s: %w", entry.Digest, err)
	}
	return nil
}

// Lookup returns the index row for digest, if any.
func (idx *DynamoIndex) Lookup(ctx context.Context, digest string) (IndexEntry, bool, error) {
	out, err := idx.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &idx.table,
		Key: map[string]types.AttributeValue{
			"digest": &types.AttributeValueMemberS{Value: digest},
		},
	})
	if err != nil {
		return IndexEntry{}, false, fmt.Errorf("cache: looking up %s: %w", digest, err)
	}
	if out.Item == nil {
		return IndexEntry{}, false, nil
	}
	entry := IndexEntry{Digest: digest}
	if v, ok := out.Item["s3_key"].(*types.AttributeValueMemberS); ok {
		entry.S3Key = v.Value
	}
	if v, ok := out.Item["num_registers"].(*types.AttributeValueMemberN); ok {
		fmt.Sscan(v.Value, &entry.NumRegisters)
	}
	if v, ok := out.Item["created_at"].(*types.AttributeValueMemberS); ok {
		entry.CreatedAt, _ = time.Parse(time.RFC3339, v.Value)
	}
	return entry, true, nil
}
