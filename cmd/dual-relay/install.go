package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/kardianos/osext"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sweeney/dual-relay/internal/config"
)

const serviceFile = `[Unit]
Description=Dual relay controller
After=network-online.target
Wants=network-online.target

[Service]
ExecStart={{.BinPath}} run -c {{.ConfigFile}}
Restart=always
RestartSec=2

[Install]
WantedBy=multi-user.target
`

var serviceTmpl = template.Must(template.New("service").Parse(serviceFile))

func runInstall(cmd *cobra.Command, args []string) error {
	bPath, err := osext.Executable()
	if err != nil {
		return fmt.Errorf("locate binary: %w", err)
	}
	if err := install(bPath, installPrefix, configPath, installReset); err != nil {
		return fmt.Errorf("install: %w", err)
	}
	logrus.Infof("installed under %s", prefixOrRoot(installPrefix))
	return nil
}

func prefixOrRoot(prefix string) string {
	if prefix == "" {
		return "/"
	}
	return prefix
}

// install copies the binary at srcPath, writes the systemd unit and, unless
// one exists and reset is false, the default config.
func install(srcPath, prefix, configFile string, reset bool) error {
	prefix = prefixOrRoot(prefix)

	binPath := filepath.Join(prefix, "usr/bin/dual-relay")
	if err := copyFile(srcPath, binPath, 0o755); err != nil {
		return err
	}

	unitPath := filepath.Join(prefix, "usr/lib/systemd/system/dual-relay.service")
	if err := os.MkdirAll(filepath.Dir(unitPath), 0o755); err != nil {
		return err
	}
	unit, err := os.OpenFile(unitPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	err = serviceTmpl.Execute(unit, struct{ BinPath, ConfigFile string }{"/usr/bin/dual-relay", configFile})
	if cerr := unit.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", unitPath, err)
	}

	confPath := filepath.Join(prefix, configFile)
	if _, err := os.Stat(confPath); err == nil && !reset {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(confPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(confPath, []byte(config.DefaultFile), 0o644)
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", dst, err)
	}
	return out.Close()
}
