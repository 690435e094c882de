package confloader

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// usersKeyDelim never appears in usernames, so names containing dots stay flat.
const usersKeyDelim = "::"

// LoadUsersFile reads a credential file of the form:
//
//	users:
//	  alice: password123
//	  bob: $argon2id$v=19$...
//
// and returns the username -> secret table.
func LoadUsersFile(path string) (map[string]string, error) {
	k := koanf.New(usersKeyDelim)
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load users file %s: %w", path, err)
	}

	if !k.Exists("users") {
		return nil, fmt.Errorf("users file %s: missing top-level users key", path)
	}

	users := make(map[string]string)
	if err := k.Unmarshal("users", &users); err != nil {
		return nil, fmt.Errorf("users file %s: %w", path, err)
	}

	for name, secret := range users {
		if name == "" || secret == "" {
			return nil, fmt.Errorf("users file %s: empty username or secret", path)
		}
	}
	return users, nil
}
