// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package image

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// GuestConfigPath is where the guest supervisor expects its configuration,
// relative to the guest root.
const GuestConfigPath = "etc/redoxerd"

// RewriteArgs maps arguments that name host paths under a copied-in folder
// to the folder's guest mount point. Arguments that do not resolve to a
// path under any folder pass through unchanged.
func RewriteArgs(args []string, folders []FolderMapping) ([]string, error) {
	rewritten := make([]string, len(args))

	for i, arg := range args {
		guestArg, err := rewriteArg(arg, folders)
		if err != nil {
			return nil, err
		}

		rewritten[i] = guestArg
	}

	return rewritten, nil
}

func rewriteArg(arg string, folders []FolderMapping) (string, error) {
	resolved, ok := canonicalArg(arg)
	if !ok {
		return arg, nil
	}

	for _, folder := range folders {
		host, err := filepath.EvalSymlinks(folder.Host)
		if err != nil {
			continue
		}

		rel, err := filepath.Rel(host, resolved)
		if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
			continue
		}

		if !utf8.ValidString(rel) {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, rel)
		}

		guestArg := folder.Guest
		if rel != "." {
			guestArg = path.Join(folder.Guest, filepath.ToSlash(rel))
		}

		slog.Info("substituting guest path", "from", arg, "to", guestArg)

		return guestArg, nil
	}

	return arg, nil
}

// canonicalArg resolves an argument to a canonical absolute path. Existing
// paths resolve through symlinks. Absolute paths that do not exist yet,
// such as output files the guest program will create, resolve their longest
// existing ancestor and keep the remainder lexically. Anything else is not
// treated as a path.
func canonicalArg(arg string) (string, bool) {
	if resolved, err := filepath.EvalSymlinks(arg); err == nil {
		return resolved, true
	}

	if !filepath.IsAbs(arg) {
		return "", false
	}

	dir := filepath.Dir(filepath.Clean(arg))
	rest := filepath.Base(filepath.Clean(arg))

	for {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(resolved, rest), true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return filepath.Clean(arg), true
		}

		rest = filepath.Join(filepath.Base(dir), rest)
		dir = parent
	}
}

// WriteGuestConfig writes the argument vector to the guest configuration
// file under root, one token per line, with paths rewritten to their guest
// mount points.
func WriteGuestConfig(root string, cfg *RunConfig) error {
	args, err := RewriteArgs(cfg.Args, cfg.Folders)
	if err != nil {
		return err
	}

	target := filepath.Join(root, filepath.FromSlash(GuestConfigPath))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	var builder strings.Builder
	for _, arg := range args {
		builder.WriteString(arg)
		builder.WriteByte('\n')
	}

	return os.WriteFile(target, []byte(builder.String()), 0o644)
}
