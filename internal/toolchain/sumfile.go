// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package toolchain

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Sum is one entry of a SHA256SUM file.
type Sum struct {
	Hash string
	Name string
}

// ParseSumFile reads sha256sum output: one "hash  filename" pair per line.
func ParseSumFile(r io.Reader) ([]Sum, error) {
	var sums []Sum

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 || len(fields[0]) != sha256.Size*2 {
			return nil, fmt.Errorf("malformed checksum line %q", line)
		}

		sums = append(sums, Sum{Hash: strings.ToLower(fields[0]), Name: fields[1]})
	}

	return sums, scanner.Err()
}

// ReadSumFile parses the checksum file at path.
func ReadSumFile(path string) ([]Sum, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseSumFile(file)
}

// Verify checks the file at path against the recorded hash.
func (s Sum) Verify(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return err
	}

	actual := hex.EncodeToString(hash.Sum(nil))
	if actual != s.Hash {
		return fmt.Errorf("%w: %s: got %s, want %s",
			ErrChecksumMismatch, s.Name, actual, s.Hash)
	}

	return nil
}
