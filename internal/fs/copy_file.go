// Adapted from https://github.com/vercel/turborepo (cli/internal/fs/copy_file.go),
// itself adapted from https://github.com/thought-machine/please.
// Copyright Thought Machine, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0
package fs

import (
	"errors"
	"os"

	"github.com/karrick/godirwalk"
)

// Walk implements an equivalent to filepath.Walk, rooted at rootPath.
func Walk(rootPath string, callback func(name string, isDir bool) error) error {
	return WalkMode(UnsafeToAbsolutePath(rootPath), func(name string, isDir bool, mode os.FileMode) error {
		return callback(name, isDir)
	})
}

// WalkMode is like Walk but the callback also receives the entry's file mode type.
// N.B. This only includes the bits of the mode that determine the mode type, not the permissions.
func WalkMode(rootPath AbsolutePath, callback func(name string, isDir bool, mode os.FileMode) error) error {
	return godirwalk.Walk(rootPath.ToString(), &godirwalk.Options{
		Callback: func(name string, info *godirwalk.Dirent) error {
			// We follow symlinked files but not symlinked directories: for a
			// symlinked directory we'd rather skip it than silently walk outside
			// the extracted tree's root.
			isDir, err := info.IsDirOrSymlinkToDir()
			if err != nil {
				pathErr := &os.PathError{}
				if errors.As(err, &pathErr) {
					// Broken link: skip this entry.
					return godirwalk.SkipThis
				}
				return err
			}
			return callback(name, isDir, info.ModeType())
		},
		ErrorCallback: func(pathname string, err error) godirwalk.ErrorAction {
			pathErr := &os.PathError{}
			if errors.As(err, &pathErr) {
				return godirwalk.SkipNode
			}
			return godirwalk.Halt
		},
		Unsorted:            true,
		AllowNonDirectory:   true,
		FollowSymbolicLinks: false,
	})
}
