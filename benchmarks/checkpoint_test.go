package benchmarks

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/intentgraph/pkg/agent"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/checkpoint"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/llm"
)

// journalState is a state shaped like the intent agent's.
func journalState() []byte {
	s := agent.State{
		InputText: "summarize: tides rise and fall twice a day because of the moon",
		Result:    "The moon pulls the sea, so it goes up and down.",
		Next:      agent.RouteTerminal,
	}
	rec, err := checkpoint.New("run-1", agent.NodeSummarizer, 1, mustJSON(s), agent.NodeTerminal).Record()
	if err != nil {
		panic(err)
	}
	return rec.Data
}

func mustJSON(s agent.State) []byte {
	data, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	return data
}

func appendN(b *testing.B, store checkpoint.Store) {
	ctx := context.Background()
	data := journalState()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		err := store.Append(ctx, checkpoint.Record{
			RunID:    fmt.Sprintf("run-%d", i/3),
			NodeID:   agent.NodeSummarizer,
			Sequence: i%3 + 1,
			Data:     data,
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMemoryStore_Append measures in-memory journal writes.
func BenchmarkMemoryStore_Append(b *testing.B) {
	appendN(b, checkpoint.NewMemoryStore())
}

// BenchmarkSQLiteStore_Append measures SQLite journal writes.
func BenchmarkSQLiteStore_Append(b *testing.B) {
	store := createSQLiteStore(b)
	defer store.Close()
	appendN(b, store)
}

// BenchmarkSQLiteStore_History measures loading a three-entry run.
func BenchmarkSQLiteStore_History(b *testing.B) {
	store := createSQLiteStore(b)
	defer store.Close()

	ctx := context.Background()
	data := journalState()
	for seq := 1; seq <= 3; seq++ {
		rec := checkpoint.Record{RunID: "run-1", NodeID: nodeID(seq), Sequence: seq, Data: data}
		if err := store.Append(ctx, rec); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := checkpoint.History(ctx, store, "run-1"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkAgent_RunOnce_WithJournal measures a full run recording every step.
func BenchmarkAgent_RunOnce_WithJournal(b *testing.B) {
	gen := llm.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		return prompt, nil
	})
	a, err := agent.New(gen, agent.WithJournal(checkpoint.NewMemoryStore()))
	if err != nil {
		b.Fatal(err)
	}

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := a.RunOnce(ctx, "2 + 2"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRun_WithoutJournal is the baseline for the journal benchmarks.
func BenchmarkRun_WithoutJournal(b *testing.B) {
	compiled := mustCompile(buildLinearGraph(5))
	ctx := flowgraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, State{})
	}
}

// BenchmarkRun_WithJournal runs the same graph journaling every node.
func BenchmarkRun_WithJournal(b *testing.B) {
	store := checkpoint.NewMemoryStore()
	compiled := mustCompile(buildLinearGraph(5))
	ctx := flowgraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, State{},
			flowgraph.WithCheckpointing(store),
			flowgraph.WithRunID(fmt.Sprintf("run-%d", i)))
	}
}

func createSQLiteStore(b *testing.B) *checkpoint.SQLiteStore {
	b.Helper()
	store, err := checkpoint.NewSQLiteStore(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatal(err)
	}
	return store
}
