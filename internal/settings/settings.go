package settings

import (
	"sort"
	"strings"

	"github.com/unkn0wn-root/playterm/internal/errdef"
)

type Matcher func(string) bool
type ApplyFunc func(key, val string) error

// Handler claims the keys its matcher accepts.
type Handler struct {
	Match Matcher
	Apply ApplyFunc
}

type Applier struct {
	handlers []Handler
}

func New(handlers ...Handler) Applier {
	return Applier{handlers: handlers}
}

// ApplyAll routes each key to the first handler that claims it, in key order.
// Keys nobody claims are returned.
func (a Applier) ApplyAll(values map[string]string) (map[string]string, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	left := make(map[string]string)
	for _, raw := range keys {
		key := normKey(raw)
		if key == "" {
			continue
		}
		val := values[raw]
		h, ok := a.find(key)
		if !ok {
			left[key] = val
			continue
		}
		if h.Apply == nil {
			continue
		}
		if err := h.Apply(key, val); err != nil {
			return nil, err
		}
	}
	return left, nil
}

// Strict is ApplyAll that fails on the first unclaimed key.
func (a Applier) Strict(values map[string]string) error {
	left, err := a.ApplyAll(values)
	if err != nil {
		return err
	}
	if len(left) == 0 {
		return nil
	}
	unknown := make([]string, 0, len(left))
	for k := range left {
		unknown = append(unknown, k)
	}
	sort.Strings(unknown)
	return errdef.New(errdef.CodeConfig, "unknown setting %s", strings.Join(unknown, ", "))
}

func (a Applier) find(key string) (Handler, bool) {
	for _, h := range a.handlers {
		if h.Match != nil && h.Match(key) {
			return h, true
		}
	}
	return Handler{}, false
}

func PrefixMatcher(prefixes ...string) Matcher {
	return func(key string) bool {
		key = normKey(key)
		for _, p := range prefixes {
			if strings.HasPrefix(key, normKey(p)) {
				return true
			}
		}
		return false
	}
}

func ExactMatcher(keys ...string) Matcher {
	return func(key string) bool {
		key = normKey(key)
		for _, k := range keys {
			if key == normKey(k) {
				return true
			}
		}
		return false
	}
}

// ParsePairs turns repeated key=value flags into a map. Later pairs win.
func ParsePairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, val, ok := strings.Cut(pair, "=")
		key = normKey(key)
		if !ok || key == "" {
			return nil, errdef.New(errdef.CodeConfig, "invalid setting %q, expected key=value", pair)
		}
		out[key] = strings.TrimSpace(val)
	}
	return out, nil
}

func normKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
