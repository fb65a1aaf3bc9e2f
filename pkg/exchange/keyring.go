package exchange

import (
	"encoding/json"
	"fmt"
	"os"
)

// Keyring maps account names to API keys. A nil Keyring means auth is
// disabled and every request passes.
type Keyring struct {
	keys map[string]string
}

// LoadKeyring reads a JSON object of account -> key. Non-string values are
// ignored rather than rejected.
func LoadKeyring(path string) (*Keyring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keyring: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("keyring: parse %s: %w", path, err)
	}
	keys := make(map[string]string, len(raw))
	for acc, v := range raw {
		if s, ok := v.(string); ok {
			keys[acc] = s
		}
	}
	return &Keyring{keys: keys}, nil
}

func (k *Keyring) Enabled() bool {
	return k != nil
}

// Check reports whether key is the account's API key. Unknown accounts and
// empty keys always fail.
func (k *Keyring) Check(account, key string) bool {
	if k == nil {
		return true
	}
	want, ok := k.keys[account]
	return ok && want != "" && want == key
}
