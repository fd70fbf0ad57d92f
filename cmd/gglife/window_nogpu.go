// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build nogpu

package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/gglife"
)

func runWindow(context.Context, *config, gglife.Loader, *prometheus.Registry) error {
	return errors.New("built with nogpu: only -headless is available")
}

func setNativeLogger(*slog.Logger) {}
