package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// source resolves a key from the process environment first, then from the
// optional YAML file named by CONFIG_FILE. The file is a flat mapping using
// the same keys as the environment:
//
//	HTTP_ADDR: ":9090"
//	MAIL_TRANSPORT: rabbitmq
type source struct {
	file map[string]string
}

func newSource(path string) (*source, error) {
	s := &source{file: map[string]string{}}
	if path == "" {
		return s, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	for k, v := range raw {
		if v == nil {
			continue
		}
		s.file[k] = fmt.Sprint(v)
	}
	return s, nil
}

func (s *source) get(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v, ok := s.file[key]; ok && v != "" {
		return v
	}
	return def
}
