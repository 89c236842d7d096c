// Package config manages user-level settings stored at
// ~/.profilekit/config.yaml. It provides functions to load, read, and
// write configuration keys such as the profiles root directory.
package config
