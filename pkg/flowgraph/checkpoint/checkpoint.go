package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Version is the current entry format version.
const Version = 1

// Checkpoint is the snapshot written after a node completes.
type Checkpoint struct {
	Version   int       `json:"version"`
	RunID     string    `json:"run_id"`
	NodeID    string    `json:"node_id"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`

	// State is the JSON encoding of the state the node produced.
	State    json.RawMessage `json:"state"`
	NextNode string          `json:"next_node"`

	PrevNodeID string `json:"prev_node_id,omitempty"`
}

// New creates a checkpoint. state must already be JSON-encoded.
func New(runID, nodeID string, sequence int, state []byte, nextNode string) *Checkpoint {
	return &Checkpoint{
		Version:   Version,
		RunID:     runID,
		NodeID:    nodeID,
		Sequence:  sequence,
		Timestamp: time.Now().UTC(),
		State:     state,
		NextNode:  nextNode,
	}
}

// WithPrevNode sets the node that ran before this one.
func (c *Checkpoint) WithPrevNode(prevNodeID string) *Checkpoint {
	c.PrevNodeID = prevNodeID
	return c
}

// Marshal serializes a checkpoint to JSON.
func (c *Checkpoint) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Record returns the store record carrying this checkpoint.
func (c *Checkpoint) Record() (Record, error) {
	data, err := c.Marshal()
	if err != nil {
		return Record{}, err
	}
	return Record{RunID: c.RunID, NodeID: c.NodeID, Sequence: c.Sequence, Data: data}, nil
}

// DecodeState unmarshals the stored state into target.
func (c *Checkpoint) DecodeState(target any) error {
	return json.Unmarshal(c.State, target)
}

// Unmarshal deserializes a checkpoint from JSON.
func Unmarshal(data []byte) (*Checkpoint, error) {
	var c Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.Version != Version {
		return nil, fmt.Errorf("unsupported checkpoint version %d", c.Version)
	}
	return &c, nil
}

// History loads and decodes every entry of a run, in sequence order.
func History(ctx context.Context, store Store, runID string) ([]*Checkpoint, error) {
	infos, err := store.List(ctx, runID)
	if err != nil {
		return nil, err
	}

	history := make([]*Checkpoint, 0, len(infos))
	for _, info := range infos {
		data, err := store.Load(ctx, runID, info.Sequence)
		if err != nil {
			return nil, fmt.Errorf("load entry %d: %w", info.Sequence, err)
		}
		cp, err := Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("decode entry %d: %w", info.Sequence, err)
		}
		history = append(history, cp)
	}
	return history, nil
}

// Path returns the node IDs of a run's journal in execution order.
func Path(ctx context.Context, store Store, runID string) ([]string, error) {
	infos, err := store.List(ctx, runID)
	if err != nil {
		return nil, err
	}
	path := make([]string, len(infos))
	for i, info := range infos {
		path[i] = info.NodeID
	}
	return path, nil
}
