package config

//
// server.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
//

import (
	"strings"

	"gitlab.com/kabes/go-pgfairing/internal/aerr"
)

// ServerConf configure http server.
type ServerConf struct {
	Address string
	WebRoot string
	TLSKey  string
	TLSCert string

	DebugFlags    DebugFlags
	EnableMetrics bool
}

func (c *ServerConf) Validate() error {
	c.Address = strings.TrimSpace(c.Address)
	if c.Address == "" {
		return aerr.ErrValidation.WithUserMsg("listen address can't be empty")
	}

	c.WebRoot = strings.TrimSuffix(strings.TrimSpace(c.WebRoot), "/")
	if c.WebRoot != "" && !strings.HasPrefix(c.WebRoot, "/") {
		return aerr.ErrValidation.WithUserMsg("web root must start with '/'")
	}

	if (c.TLSKey != "") != (c.TLSCert != "") {
		return aerr.ErrValidation.WithUserMsg("both tls key and cert must be defined")
	}

	return nil
}

func (c *ServerConf) TLSEnabled() bool {
	return c.TLSKey != ""
}
