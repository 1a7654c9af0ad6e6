package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/edgewire-io/adinconf/pkg/exchange"
	"github.com/edgewire-io/adinconf/pkg/util"
)

// benchConfig describes the physical test bench: how to reach the DUT
// host for timing measurements and where each switch segment's traffic
// endpoints live.
type benchConfig struct {
	DUT struct {
		Addr     string `yaml:"addr"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
	} `yaml:"dut"`
	Segments map[string]exchange.Endpoint `yaml:"segments"`
}

func loadBench(path string) (*benchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bench config: %w", err)
	}
	var cfg benchConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing bench config %s: %w", path, err)
	}

	v := &util.ValidationBuilder{}
	for name, ep := range cfg.Segments {
		if ep.Inject == "" {
			v.AddErrorf("segment %s: inject address is required", name)
		}
		if ep.Listen == "" {
			v.AddErrorf("segment %s: listen address is required", name)
		}
	}
	if err := v.Build(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
