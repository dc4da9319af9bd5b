// Package config loads HubConfig the way the teacher's daemon.go expects a
// config.Config to already exist: spf13/viper merging a TOML file across a
// fixed search path, CLI flags, and environment variables. Grounded on
// celestiaorg-popsigner/control-plane's internal/config/config.go for the
// viper wiring shape, generalized from that service's per-domain sections
// to this hub's flat field set.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yazhouio/extension-hub/internal/huberr"
)

// HubConfig is the full set of knobs cmd/server needs to stand up the
// control plane and bulk plane. See SPEC_FULL.md §2.1.
type HubConfig struct {
	Addr                    string        `mapstructure:"addr"`
	GRPCAddr                string        `mapstructure:"grpc_addr"`
	BaseDir                 string        `mapstructure:"base_dir"`
	TarDirPath              string        `mapstructure:"tar_dir_path"`
	UploadTokenTTL          time.Duration `mapstructure:"upload_token_ttl"`
	DownloadTokenTTL        time.Duration `mapstructure:"download_token_ttl"`
	MaxUploadBytes          int64         `mapstructure:"max_upload_bytes"`
	TextReplaceExcludeGlobs []string      `mapstructure:"text_replace_exclude_globs"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":7070")
	v.SetDefault("grpc_addr", ":7071")
	v.SetDefault("base_dir", "./data/extracted")
	v.SetDefault("tar_dir_path", "./data/tar")
	v.SetDefault("upload_token_ttl", "30s")
	v.SetDefault("download_token_ttl", "30m")
	v.SetDefault("max_upload_bytes", 250*1024*1024)
	v.SetDefault("text_replace_exclude_globs", []string{`\.git$`})
}

// Flags registers the CLI flags that override file/env config, matching
// SPEC_FULL.md §2.1 item 4. Call before pflag.Parse / cobra's Execute.
func Flags(fs *pflag.FlagSet) {
	fs.String("addr", "", "bulk-plane HTTP listen address")
	fs.String("base-dir", "", "root directory extracted trees are written under")
	fs.String("tar-dir", "", "directory stored archives are written under")
	fs.String("grpc-addr", "", "control-plane gRPC listen address")
}

// Load builds a *viper.Viper merging, lowest to highest precedence:
// ./server.toml, ~/.config/extension_hub/server.toml,
// /etc/extension_hub/server.toml, bound CLI flags, then EXTENSION_HUB_* env
// vars — and unmarshals the result into a HubConfig.
func Load(fs *pflag.FlagSet) (*HubConfig, error) {
	v := viper.New()
	v.SetConfigName("server")
	v.SetConfigType("toml")

	home, err := os.UserHomeDir()
	if err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "extension_hub"))
	}
	v.AddConfigPath("/etc/extension_hub")
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, huberr.ConfigureError(err)
		}
	}

	if fs != nil {
		if err := v.BindPFlag("addr", fs.Lookup("addr")); err != nil {
			return nil, huberr.ConfigureError(err)
		}
		if err := v.BindPFlag("base_dir", fs.Lookup("base-dir")); err != nil {
			return nil, huberr.ConfigureError(err)
		}
		if err := v.BindPFlag("tar_dir_path", fs.Lookup("tar-dir")); err != nil {
			return nil, huberr.ConfigureError(err)
		}
		if err := v.BindPFlag("grpc_addr", fs.Lookup("grpc-addr")); err != nil {
			return nil, huberr.ConfigureError(err)
		}
	}

	v.SetEnvPrefix("EXTENSION_HUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg HubConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, huberr.ConfigureError(err)
	}
	return &cfg, nil
}
