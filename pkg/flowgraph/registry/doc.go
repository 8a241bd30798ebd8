// Package registry provides a generic thread-safe registry for values
// indexed by key.
//
// The typical use is a table of named factories populated from init
// functions and read on every lookup:
//
//	type Factory func(cfg config.Config) (llm.Client, error)
//
//	providers := registry.New[string, Factory]()
//	providers.Register("ollama", newOllama)
//	providers.Register("mock", newMock)
//
//	factory, ok := providers.Get(name)
//	if !ok {
//	    return fmt.Errorf("unknown provider %q (have %v)", name, registry.SortedKeys(providers))
//	}
package registry
