package format

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// playgroundTags are delegated to go-playground/validator string checks.
var playgroundTags = []string{
	"email", "url", "uri", "hostname", "hostname_rfc1123", "fqdn",
	"ip", "ipv4", "ipv6", "cidr", "mac",
	"alpha", "alphanum", "numeric", "number", "hexadecimal", "hexcolor", "rgb",
	"base64", "ascii", "printascii", "lowercase", "uppercase",
	"json", "jwt", "e164", "semver", "ulid", "md5", "sha256",
	"iso3166_1_alpha2", "iso3166_1_alpha3", "iso4217", "bcp47_language_tag",
	"latitude", "longitude",
}

func builtins() map[string]Predicate {
	v := validator.New()
	out := make(map[string]Predicate, len(playgroundTags)+10)
	for _, tag := range playgroundTags {
		out[tag] = func(s string) bool { return v.Var(s, tag) == nil }
	}

	out["uuid"] = func(s string) bool {
		if len(s) != 36 {
			return false
		}
		_, err := uuid.Parse(s)
		return err == nil
	}
	out["uuid3"] = uuidVersion(3)
	out["uuid4"] = uuidVersion(4)
	out["uuid5"] = uuidVersion(5)

	out["datetime"] = timeLayout(time.RFC3339)
	out["date-time"] = out["datetime"]
	out["date"] = timeLayout(time.DateOnly)
	out["time"] = timeLayout(time.TimeOnly)
	out["duration"] = func(s string) bool {
		_, err := time.ParseDuration(s)
		return err == nil
	}
	out["regex"] = func(s string) bool {
		_, err := regexp.Compile(s)
		return err == nil
	}
	return out
}

func uuidVersion(ver uuid.Version) Predicate {
	return func(s string) bool {
		if len(s) != 36 {
			return false
		}
		id, err := uuid.Parse(s)
		return err == nil && id.Version() == ver
	}
}

func timeLayout(layout string) Predicate {
	return func(s string) bool {
		_, err := time.Parse(layout, s)
		return err == nil
	}
}
