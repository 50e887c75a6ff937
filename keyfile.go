package cryptutil

import (
	"github.com/absfs/absfs"
	"github.com/rs/zerolog"
)

// Keyfiles creates and loads keyfiles on a filesystem
type Keyfiles struct {
	fs  absfs.Filer
	log zerolog.Logger
}

// NewKeyfiles returns a keyfile manager backed by fs. A nil fs selects the
// host filesystem; a nil logger disables logging.
func NewKeyfiles(fs absfs.Filer, logger *zerolog.Logger) *Keyfiles {
	if fs == nil {
		fs = OSFiler{}
	}
	return &Keyfiles{
		fs:  fs,
		log: loggerOrNop(logger).With().Str("component", "keyfile").Logger(),
	}
}

// Generate writes a freshly generated key to path, replacing any previous
// contents. path must end in ".key"; otherwise nothing is created.
func (k *Keyfiles) Generate(path string) error {
	if err := ValidateKeyfilePath(path); err != nil {
		return err
	}

	key, err := GenerateKey()
	if err != nil {
		return err
	}

	if err := writeFile(k.fs, path, key, 0600); err != nil {
		return err
	}

	k.log.Debug().Str("path", path).Msg("generated keyfile")
	return nil
}

// Load returns the raw contents of the keyfile at path. A missing keyfile
// is created empty and loads as an empty key, which the cipher rejects
// later as malformed.
func (k *Keyfiles) Load(path string) ([]byte, error) {
	if err := ValidateKeyfilePath(path); err != nil {
		return nil, err
	}

	key, err := readFile(k.fs, path)
	if err != nil {
		return nil, err
	}

	k.log.Debug().Str("path", path).Int("size", len(key)).Msg("loaded keyfile")
	return key, nil
}

// GenerateKeyfile writes a new key to path on the host filesystem
func GenerateKeyfile(path string) error {
	return NewKeyfiles(nil, nil).Generate(path)
}

// LoadKeyfile reads the key stored at path on the host filesystem
func LoadKeyfile(path string) ([]byte, error) {
	return NewKeyfiles(nil, nil).Load(path)
}
