package aliexpress

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// Sign computes the request signature the gateway expects: empty values are
// dropped, remaining key+value pairs are concatenated in key order with no
// separators, and the whole string is wrapped in the secret before hashing.
// MD5 and the uppercase hex form are fixed by the upstream protocol; the
// digest must match byte-for-byte or the request is rejected.
func Sign(secret string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(secret)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}
	b.WriteString(secret)

	sum := md5.Sum([]byte(b.String()))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
