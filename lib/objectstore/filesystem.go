// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Filesystem is an object store rooted at a local directory. Each key
// is one file directly under the root.
type Filesystem struct {
	root string
}

// NewFilesystem creates the root directory if needed.
func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		return nil, fmt.Errorf("objectstore: filesystem root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("objectstore: creating %s: %w", root, err)
	}
	return &Filesystem{root: root}, nil
}

// Put writes data to root/key. The file is written to a temporary
// name, fsynced, and renamed into place, so a reader sees either the
// previous object or the new one. The digest is written alongside as
// key + ".blake3".
func (f *Filesystem) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" || key == "." || key == ".." || filepath.Base(key) != key {
		return fmt.Errorf("objectstore: invalid key %q", key)
	}

	path := filepath.Join(f.root, key)
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("objectstore: put %s: %w", key, err)
	}
	if err := writeAtomic(path+"."+DigestMetadataKey, []byte(Digest(data)+"\n")); err != nil {
		return fmt.Errorf("objectstore: put %s digest: %w", key, err)
	}
	return nil
}

// Path returns the file path an object key is stored at.
func (f *Filesystem) Path(key string) string {
	return filepath.Join(f.root, key)
}

// String names the destination for logs.
func (f *Filesystem) String() string {
	return "file:" + f.root
}

func writeAtomic(path string, data []byte) error {
	temporaryPath := path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return err
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return err
	}

	// Make the rename itself durable.
	if directory, err := os.Open(filepath.Dir(path)); err == nil {
		directory.Sync()
		directory.Close()
	}
	return nil
}
