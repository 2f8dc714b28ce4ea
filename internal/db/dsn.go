package db

import (
	"net/url"
	"strings"
)

// ToURLDSN converts a lib/pq key=value DSN into URL form, as required by
// golang-migrate. URL-form input passes through unchanged.
func ToURLDSN(kvDSN string) string {
	if kvDSN == "" || strings.HasPrefix(strings.ToLower(kvDSN), "postgres://") {
		return kvDSN
	}
	m := map[string]string{}
	for _, part := range strings.Fields(kvDSN) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 {
			m[strings.ToLower(kv[0])] = kv[1]
		}
	}
	host := m["host"]
	if host == "" || m["user"] == "" || m["dbname"] == "" {
		return kvDSN
	}
	u := &url.URL{Scheme: "postgres", Host: host}
	if port := m["port"]; port != "" {
		u.Host = host + ":" + port
	}
	if pass := m["password"]; pass != "" {
		u.User = url.UserPassword(m["user"], pass)
	} else {
		u.User = url.User(m["user"])
	}
	u.Path = "/" + m["dbname"]
	if sslm, ok := m["sslmode"]; ok {
		q := url.Values{}
		q.Set("sslmode", sslm)
		u.RawQuery = q.Encode()
	}
	return u.String()
}
