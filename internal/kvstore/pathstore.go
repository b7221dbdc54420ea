package kvstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgallion1/coursedraft/internal/pathstore"
)

// Pathstore keeps values in a remote pathstore service. Values must be JSON.
type Pathstore struct {
	client *pathstore.Client
}

func NewPathstore(client *pathstore.Client) *Pathstore {
	return &Pathstore{client: client}
}

func (p *Pathstore) Get(ctx context.Context, key string) ([]byte, error) {
	node, err := p.client.GetNode(ctx, key)
	if err != nil {
		return nil, err
	}
	if node == nil || len(node.Value) == 0 || string(node.Value) == "null" {
		return nil, ErrNotFound
	}
	return []byte(node.Value), nil
}

func (p *Pathstore) Put(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("pathstore put %s: value is not valid JSON", key)
	}
	return p.client.PutNode(ctx, key, pathstore.NodeRequest{
		Value:  json.RawMessage(value),
		Source: "coursedraft",
	})
}

func (p *Pathstore) Delete(ctx context.Context, key string) error {
	return p.client.DeleteNode(ctx, key)
}

func (p *Pathstore) Close() error {
	p.client.Close()
	return nil
}
