package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/snowflakedb/gosnowflake"
	"gopkg.in/ini.v1"
)

// SnowSQL config sections are named "connections.<name>".
const snowsqlSectionPrefix = "connections."

type SnowSQLConnections struct {
	cfg *ini.File
}

func LoadSnowSQLConnections(path string) (*SnowSQLConnections, error) {
	cfg, err := ini.Load(ExpandHome(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read snowsql config: %w", err)
	}
	return &SnowSQLConnections{cfg: cfg}, nil
}

func (s *SnowSQLConnections) Names() []string {
	var names []string
	for _, section := range s.cfg.Sections() {
		if name, ok := strings.CutPrefix(section.Name(), snowsqlSectionPrefix); ok {
			names = append(names, name)
		}
	}
	return names
}

// Config maps a named connection onto the driver configuration.
func (s *SnowSQLConnections) Config(name string) (*gosnowflake.Config, error) {
	section, err := s.cfg.GetSection(snowsqlSectionPrefix + name)
	if err != nil {
		return nil, fmt.Errorf("connection %s not found", name)
	}

	account := section.Key("accountname").String()
	if account == "" {
		return nil, fmt.Errorf("connection %s has no accountname", name)
	}

	return &gosnowflake.Config{
		Account:   account,
		User:      section.Key("username").String(),
		Password:  section.Key("password").String(),
		Database:  section.Key("dbname").String(),
		Schema:    section.Key("schemaname").String(),
		Warehouse: section.Key("warehousename").String(),
		Role:      section.Key("rolename").String(),
		Region:    section.Key("region").String(),
	}, nil
}

// ExpandHome resolves a leading "~/" against the current user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
