package transforms

import (
	"strings"
)

// PropsFromEnv converts environment entries ("KEY=value") under prefix into
// chain properties. With prefix "ROUTER_TRANSFORMS", ROUTER_TRANSFORMS=a,b
// becomes transforms=a,b and ROUTER_TRANSFORMS_A_HEADER_NAME=id becomes
// transforms.a.header.name=id. Aliases must therefore not contain
// underscores.
func PropsFromEnv(prefix string, environ []string) map[string]string {
	props := make(map[string]string)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || (key != prefix && !strings.HasPrefix(key, prefix+"_")) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		props["transforms"+strings.ToLower(strings.ReplaceAll(rest, "_", "."))] = value
	}
	return props
}
