package sqldbal

import (
	"fmt"
	"strconv"
	"strings"
)

// DriverTag selects the backend adapter. MySQL and MariaDB share one
// adapter implementation: MySQL and MariaDB speak the same wire
// protocol closely enough that one client library and one adapter
// cover both.
type DriverTag int

const (
	DriverInvalid DriverTag = iota
	DriverEmbedded
	DriverMySQL
	DriverMariaDB
	DriverPostgreSQL
)

func (d DriverTag) String() string {
	switch d {
	case DriverEmbedded:
		return "embedded-engine"
	case DriverMySQL, DriverMariaDB:
		return "mysql-family"
	case DriverPostgreSQL:
		return "postgresql"
	default:
		return "invalid"
	}
}

// Flags configures Open. FlagInvalidMemory is reserved and never set
// by callers; it marks the process-wide sentinel connection.
type Flags uint32

const (
	FlagDebug Flags = 1 << iota
	FlagEmbeddedOpenReadOnly
	FlagEmbeddedOpenReadWrite
	FlagEmbeddedOpenCreate
	FlagInvalidMemory
)

// Option is a borrowed key/value pair consulted for the duration of
// Open only. See the recognized key set below.
type Option struct {
	Key   string
	Value string
}

// Recognized option keys, shared across backends where applicable.
const (
	OptConnectTimeout = "CONNECT_TIMEOUT"
	OptTLSKey         = "TLS_KEY"
	OptTLSCert        = "TLS_CERT"
	OptTLSCA          = "TLS_CA"
	OptTLSCAPath      = "TLS_CAPATH"
	OptTLSCipher      = "TLS_CIPHER"
	OptTLSMode        = "TLS_MODE"
	OptVFS            = "VFS"
)

// parsedOptions is the set of options an adapter actually understood,
// after rejecting unrecognized keys (which set StatusInvalidParameter
// but do not abort previously accepted keys).
type parsedOptions struct {
	connectTimeoutSeconds int
	haveConnectTimeout    bool
	tlsKey                string
	tlsCert               string
	tlsCA                 string
	tlsCAPath             string
	tlsCipher             string
	tlsMode               string
	vfs                   string
	unknown               []string
}

// parseOptions applies the recognized key set for the given driver.
// Keys not applicable to that driver, or simply unknown, are
// collected in unknown; the caller (Open) decides
// whether to fold that into StatusInvalidParameter without discarding
// the options already accepted.
func parseOptions(tag DriverTag, opts []Option) parsedOptions {
	var p parsedOptions
	for _, o := range opts {
		switch o.Key {
		case OptConnectTimeout:
			if tag == DriverMySQL || tag == DriverMariaDB || tag == DriverPostgreSQL {
				if n, err := strconv.Atoi(o.Value); err == nil {
					p.connectTimeoutSeconds = n
					p.haveConnectTimeout = true
					continue
				}
			}
			p.unknown = append(p.unknown, o.Key)
		case OptTLSKey:
			if tag == DriverMySQL || tag == DriverMariaDB || tag == DriverPostgreSQL {
				p.tlsKey = o.Value
				continue
			}
			p.unknown = append(p.unknown, o.Key)
		case OptTLSCert:
			if tag == DriverMySQL || tag == DriverMariaDB || tag == DriverPostgreSQL {
				p.tlsCert = o.Value
				continue
			}
			p.unknown = append(p.unknown, o.Key)
		case OptTLSCA:
			if tag == DriverMySQL || tag == DriverMariaDB || tag == DriverPostgreSQL {
				p.tlsCA = o.Value
				continue
			}
			p.unknown = append(p.unknown, o.Key)
		case OptTLSCAPath:
			if tag == DriverMySQL || tag == DriverMariaDB {
				p.tlsCAPath = o.Value
				continue
			}
			p.unknown = append(p.unknown, o.Key)
		case OptTLSCipher:
			if tag == DriverMySQL || tag == DriverMariaDB {
				p.tlsCipher = o.Value
				continue
			}
			p.unknown = append(p.unknown, o.Key)
		case OptTLSMode:
			if tag == DriverPostgreSQL {
				switch o.Value {
				case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
					p.tlsMode = o.Value
					continue
				}
			}
			p.unknown = append(p.unknown, o.Key)
		case OptVFS:
			if tag == DriverEmbedded {
				p.vfs = o.Value
				continue
			}
			p.unknown = append(p.unknown, o.Key)
		default:
			p.unknown = append(p.unknown, o.Key)
		}
	}
	return p
}

// mysqlConnectTimeoutCap is the upper bound on CONNECT_TIMEOUT for the
// MySQL-family adapter.
const mysqlConnectTimeoutCap = 1000

// postgresConnStringKeys is the fixed, ordered key set assembled into
// the PostgreSQL connection string. Only keys with a non-empty value
// are emitted.
var postgresConnStringKeys = []string{
	"host", "hostaddr", "port", "dbname", "user", "password", "passfile",
	"connect_timeout", "client_encoding", "options", "application_name",
	"fallback_application_name", "keepalives", "keepalives_idle",
	"keepalives_interval", "keepalives_count", "tty", "replication",
	"sslmode", "requiressl", "sslcompression", "sslcert", "sslkey",
	"sslrootcert", "sslcrl", "requirepeer", "krbsrvname", "gsslib",
	"service", "target_session_attrs",
}

// buildPostgresConnString assembles the space-separated key=value
// connection string from the fixed key set, emitting only the keys
// present (and non-empty) in values.
func buildPostgresConnString(values map[string]string) (string, Status) {
	var b strings.Builder
	first := true
	for _, key := range postgresConnStringKeys {
		v, ok := values[key]
		if !ok || v == "" {
			continue
		}
		if !checkedAddInt(b.Len(), len(key)+len(v)+3) {
			return "", StatusOverflow
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(quotePostgresValue(v))
	}
	return b.String(), StatusOK
}

// quotePostgresValue single-quotes a connection-string value and
// escapes embedded backslashes/quotes per libpq's keyword/value
// syntax, only when the value needs it (is empty or contains a space,
// quote or backslash); otherwise it is emitted bare, matching common
// libpq client behavior.
func quotePostgresValue(v string) string {
	needsQuote := v == ""
	for _, r := range v {
		if r == ' ' || r == '\'' || r == '\\' {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return v
	}
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range v {
		if r == '\'' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('\'')
	return b.String()
}

// buildMySQLDSN assembles a go-sql-driver/mysql DSN from the
// connection fields and recognized options. TLS reaches the DSN only
// through tlsParamName, emitted as tls=<name> when non-empty. openMySQL
// passes an empty name and nothing loads or registers certificates, so
// the TLS_* options accepted for the MySQL family are not applied to
// the connection.
func buildMySQLDSN(location, port, user, pwd, db string, tlsParamName string, p parsedOptions) string {
	addr := location
	if port != "" {
		addr = fmt.Sprintf("%s:%s", location, port)
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s", user, pwd, addr, db)

	params := make([]string, 0, 4)
	params = append(params, "parseTime=true")
	if p.haveConnectTimeout {
		timeout := p.connectTimeoutSeconds
		if timeout > mysqlConnectTimeoutCap {
			timeout = mysqlConnectTimeoutCap
		}
		params = append(params, fmt.Sprintf("timeout=%ds", timeout))
	}
	if tlsParamName != "" {
		params = append(params, "tls="+tlsParamName)
	}
	if len(params) > 0 {
		dsn += "?" + strings.Join(params, "&")
	}
	return dsn
}
