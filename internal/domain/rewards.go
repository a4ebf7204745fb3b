package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// RewardTierParticipation is the ranked tier granted on plain completion of a competitive event.
const RewardTierParticipation = "participation"

// RewardTable is either a flat reward map ({"coins": 100}) or a ranked structure
// ({"first": {"coins": 1000}, "second": {...}}). Both shapes share one JSON object;
// numeric members are flat amounts and object members are ranked tiers.
type RewardTable struct {
	Amounts map[string]int64
	Ranked  map[string]map[string]int64
}

// FlatRewards builds a RewardTable with only flat amounts.
func FlatRewards(amounts map[string]int64) RewardTable {
	return RewardTable{Amounts: amounts}
}

// IsEmpty reports whether the table grants nothing.
func (r RewardTable) IsEmpty() bool {
	return len(r.Amounts) == 0 && len(r.Ranked) == 0
}

// CompletionGrants returns the amounts granted when a player completes the event.
// Flat amounts win; competitive events fall back to their participation tier.
func (r RewardTable) CompletionGrants() map[string]int64 {
	if len(r.Amounts) > 0 {
		return r.Amounts
	}
	return r.Ranked[RewardTierParticipation]
}

// SortedKeys returns grant keys in a stable order so partial failures are reproducible.
func SortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r RewardTable) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Amounts)+len(r.Ranked))
	for k, v := range r.Amounts {
		out[k] = v
	}
	for tier, amounts := range r.Ranked {
		out[tier] = amounts
	}
	return json.Marshal(out)
}

func (r *RewardTable) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Amounts = nil
	r.Ranked = nil
	for key, value := range raw {
		var amount int64
		if err := json.Unmarshal(value, &amount); err == nil {
			if r.Amounts == nil {
				r.Amounts = make(map[string]int64)
			}
			r.Amounts[key] = amount
			continue
		}

		var tier map[string]int64
		if err := json.Unmarshal(value, &tier); err != nil {
			return fmt.Errorf("%w: reward %q must be an amount or a tier map", ErrInvalidInput, key)
		}
		if r.Ranked == nil {
			r.Ranked = make(map[string]map[string]int64)
		}
		r.Ranked[key] = tier
	}
	return nil
}
