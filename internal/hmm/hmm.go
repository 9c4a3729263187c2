package hmm

import (
	"context"
	"sort"
	"strings"

	"github.com/corranwm/correctocr/internal/dictionary"
	"github.com/corranwm/correctocr/internal/fileio"
	"github.com/corranwm/correctocr/internal/tokens"
)

// DefaultCacheCapacity is the cache size the original configures by
// default (§4.4).
const DefaultCacheCapacity = 100000

// HMM answers k-best decode queries against a trained Params, with an
// optional multi-character substitution retry and a persisted LRU
// cache of results.
type HMM struct {
	Params     *Params
	Multichars map[string][]string

	dense *dense
	cache *lruCache
}

// New validates params and builds the dense inference-time
// representation.
func New(params *Params) (*HMM, error) {
	if err := params.ParameterCheck(); err != nil {
		return nil, err
	}
	return &HMM{Params: params, dense: buildDense(params)}, nil
}

// Load reads a parameter file, an optional multichar file, and
// attaches a persisted k-best cache, per §6's external file formats.
func Load(paramsPath, multicharsPath, cachePath string, cacheCapacity int) (*HMM, error) {
	var params Params
	if err := fileio.LoadJSON(paramsPath, &params); err != nil {
		return nil, &fileio.IOError{Path: paramsPath, Err: err}
	}
	h, err := New(&params)
	if err != nil {
		return nil, err
	}
	if multicharsPath != "" {
		var mc map[string][]string
		if err := fileio.LoadJSON(multicharsPath, &mc); err == nil {
			h.Multichars = mc
		}
	}
	h.cache = loadLRUCache(cachePath, cacheCapacity)
	return h, nil
}

// Save persists params, refusing to do so if the parameter check
// fails, and invalidates the k-best cache — the original's
// cache.delete()-on-retrain behavior.
func (h *HMM) Save(paramsPath string) error {
	if err := h.Params.ParameterCheck(); err != nil {
		return err
	}
	if err := fileio.SaveJSON(paramsPath, h.Params); err != nil {
		return &fileio.IOError{Path: paramsPath, Err: err}
	}
	if h.cache != nil {
		if err := h.cache.Delete(); err != nil {
			return err
		}
	}
	return nil
}

// RowStochastic checks invariant 1 of §8 against the dense tables.
func (h *HMM) RowStochastic(tol float64) error {
	return h.dense.rowStochastic(tol)
}

// SaveCache flushes the k-best cache to disk, if dirty.
func (h *HMM) SaveCache() error {
	if h.cache == nil {
		return nil
	}
	return h.cache.Save()
}

type beamEntry struct {
	seq  []int
	prob float64
}

// KBest runs the pruned beam search of §4.4 over word, returning
// exactly k candidates, padded with empty sentinels. It is pure in
// (word, k, Params) — callers wanting the cache and multi-character
// retry should use Decode instead.
func (h *HMM) KBest(word string, k int) []tokens.KBestItem {
	runes := []rune(word)
	if len(runes) == 0 {
		return sentinels(k)
	}

	n := len(h.dense.states)
	if n == 0 {
		return sentinels(k)
	}

	if len(runes) == 1 {
		obs, ok := h.dense.observation(string(runes[0]))
		entries := make([]beamEntry, n)
		for i := range h.dense.states {
			var e float64
			if ok {
				e = h.dense.emis.At(i, obs)
			}
			entries[i] = beamEntry{seq: []int{i}, prob: h.dense.init[i] * e}
		}
		sortBeamDesc(entries)
		return toKBestItems(h.dense, entries, k)
	}

	obs0, ok0 := h.dense.observation(string(runes[0]))
	obs1, ok1 := h.dense.observation(string(runes[1]))
	seed := make([]beamEntry, 0, n*n)
	for i := range h.dense.states {
		var e0 float64
		if ok0 {
			e0 = h.dense.emis.At(i, obs0)
		}
		for j := range h.dense.states {
			var e1 float64
			if ok1 {
				e1 = h.dense.emis.At(j, obs1)
			}
			score := h.dense.init[i] * e0 * h.dense.tran.At(i, j) * e1
			seed = append(seed, beamEntry{seq: []int{i, j}, prob: score})
		}
	}
	sortBeamDesc(seed)
	beam := truncateBeam(seed, k)

	for t := 2; t < len(runes); t++ {
		obsT, okT := h.dense.observation(string(runes[t]))
		next := make([]beamEntry, 0, len(beam)*n)
		for _, p := range beam {
			last := p.seq[len(p.seq)-1]
			for s := range h.dense.states {
				var e float64
				if okT {
					e = h.dense.emis.At(s, obsT)
				}
				score := p.prob * h.dense.tran.At(last, s) * e
				seq := make([]int, len(p.seq)+1)
				copy(seq, p.seq)
				seq[len(p.seq)] = s
				next = append(next, beamEntry{seq: seq, prob: score})
			}
		}
		sortBeamDesc(next)
		beam = truncateBeam(next, k)
	}
	return toKBestItems(h.dense, beam, k)
}

func sortBeamDesc(entries []beamEntry) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].prob > entries[j].prob })
}

func truncateBeam(entries []beamEntry, k int) []beamEntry {
	if len(entries) > k {
		return entries[:k]
	}
	return entries
}

func toKBestItems(d *dense, entries []beamEntry, k int) []tokens.KBestItem {
	out := make([]tokens.KBestItem, 0, k)
	for _, e := range entries {
		if len(out) >= k {
			break
		}
		var sb strings.Builder
		for _, idx := range e.seq {
			sb.WriteString(d.states[idx])
		}
		out = append(out, tokens.KBestItem{Candidate: sb.String(), Probability: e.prob})
	}
	for len(out) < k {
		out = append(out, tokens.KBestItem{})
	}
	return out
}

func sentinels(k int) []tokens.KBestItem {
	return make([]tokens.KBestItem, k)
}

// Decode is the cached, multi-character-retry-aware entry point used
// by the pipeline: cache hit and miss return identical sequences
// (invariant 4), and the cache is populated on miss.
func (h *HMM) Decode(word string, k int, dict *dictionary.Dictionary) []tokens.KBestItem {
	if h.cache != nil {
		if cached, ok := h.cache.get(word, k); ok {
			return cached
		}
	}
	items := h.decodeWithMultichar(word, k, dict)
	if h.cache != nil {
		h.cache.Put(word, k, items)
	}
	return items
}

// decodeWithMultichar implements §4.4's multi-character retry: for
// every configured key that occurs in word and for which none of the
// current top-k candidates are dictionary members (once cleaned),
// every substitution variant is decoded and merged back in.
func (h *HMM) decodeWithMultichar(word string, k int, dict *dictionary.Dictionary) []tokens.KBestItem {
	items := h.KBest(word, k)
	if dict == nil || len(h.Multichars) == 0 {
		return items
	}
	for key, replacements := range h.Multichars {
		if !strings.Contains(word, key) {
			continue
		}
		if anyDictMember(items, dict) {
			continue
		}
		variants := multicharVariants(word, key, replacements)
		if len(variants) == 0 {
			continue
		}
		merged := append([]tokens.KBestItem{}, items...)
		for _, v := range variants {
			merged = append(merged, h.KBest(v, k)...)
		}
		items = rerank(merged, k)
	}
	return items
}

func anyDictMember(items []tokens.KBestItem, dict *dictionary.Dictionary) bool {
	for _, it := range items {
		if it.IsSentinel() {
			continue
		}
		if dict.Contains(dictionary.Clean(it.Candidate)) {
			return true
		}
	}
	return false
}

// multicharVariants enumerates every substitution of key's occurrences
// in word with the Cartesian product of replacements, per §4.4.
func multicharVariants(word, key string, replacements []string) []string {
	var occurrences []int
	for i := 0; ; {
		idx := strings.Index(word[i:], key)
		if idx < 0 {
			break
		}
		occurrences = append(occurrences, i+idx)
		i += idx + len(key)
	}
	if len(occurrences) == 0 || len(replacements) == 0 {
		return nil
	}
	combos := cartesian(replacements, len(occurrences))
	out := make([]string, 0, len(combos))
	for _, combo := range combos {
		out = append(out, substituteAt(word, key, occurrences, combo))
	}
	return out
}

func cartesian(items []string, n int) [][]string {
	if n == 0 {
		return [][]string{{}}
	}
	rest := cartesian(items, n-1)
	out := make([][]string, 0, len(items)*len(rest))
	for _, item := range items {
		for _, r := range rest {
			combo := make([]string, 0, n)
			combo = append(combo, item)
			combo = append(combo, r...)
			out = append(out, combo)
		}
	}
	return out
}

func substituteAt(word, key string, occurrences []int, combo []string) string {
	var sb strings.Builder
	last := 0
	for i, idx := range occurrences {
		sb.WriteString(word[last:idx])
		sb.WriteString(combo[i])
		last = idx + len(key)
	}
	sb.WriteString(word[last:])
	return sb.String()
}

// rerank dedupes merged candidates by surface form keeping the
// highest probability, sorts descending (stable), and truncates or
// pads to exactly k.
func rerank(items []tokens.KBestItem, k int) []tokens.KBestItem {
	best := make(map[string]tokens.KBestItem)
	var order []string
	for _, it := range items {
		if it.IsSentinel() {
			continue
		}
		if cur, ok := best[it.Candidate]; !ok || it.Probability > cur.Probability {
			if !ok {
				order = append(order, it.Candidate)
			}
			best[it.Candidate] = it
		}
	}
	out := make([]tokens.KBestItem, 0, len(order))
	for _, cand := range order {
		out = append(out, best[cand])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Probability > out[j].Probability })
	if len(out) > k {
		out = out[:k]
	}
	for len(out) < k {
		out = append(out, tokens.KBestItem{})
	}
	return out
}

// GenerateKBest is the batch driver of §4.4: for each token, decode and
// assign, skipping tokens whose kbest is already populated unless force
// is set.
// Returns whether any token changed. Honors ctx between tokens, never
// mid-token.
func (h *HMM) GenerateKBest(ctx context.Context, toks tokens.TokenList, k int, force bool, dict *dictionary.Dictionary) (bool, error) {
	changed := false
	for _, t := range toks {
		select {
		case <-ctx.Done():
			return changed, ctx.Err()
		default:
		}
		if !force && len(t.KBest) > 0 {
			continue
		}
		items := h.Decode(t.Normalized(), k, dict)
		t.KBest = make(map[int]tokens.KBestItem, k)
		for i, it := range items {
			t.KBest[i+1] = it
		}
		changed = true
	}
	return changed, nil
}
