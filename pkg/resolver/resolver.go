// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolver maps an incoming thumbnail request path onto the storage
// keys of the source image and of the derivative.
//
// A derivative is addressed by inserting a "<width>x<height>" segment before
// the file name of the source object:
//
//	source: public/331C474F.png
//	target: public/80x80/331C474F.png
//	path:   /<stage>/public/80x80/331C474F.png
//
// The stage prefix is the API gateway deployment stage; it is stripped before
// the keys are derived.
package resolver

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// The prefix group is non-greedy so the dimension token keeps all of its
	// leading digits: "/a/180x80/x.png" yields "180x80", not "80x80".
	pathPattern      = regexp.MustCompile(`^(/.*?)(\d+x\d+)/([A-Za-z0-9_\-.~?=&\[\]]+?)$`)
	dimensionPattern = regexp.MustCompile(`^(\d+)x(\d+)$`)
)

const (
	msgWrongPath       = "wrong url path format"
	msgWrongDimensions = "wrong dimensions format"
)

// Keys is the result of resolving a request path.
type Keys struct {
	// Path is the prefix path without its leading slash, e.g. "public/".
	Path string
	// Dimensions is the raw "<width>x<height>" token.
	Dimensions string
	FileName   string

	SourceKey string
	TargetKey string

	Width  int
	Height int
}

// ParseError is returned when a path or a dimension token does not follow
// the expected grammar.
type ParseError struct {
	Message string
	Path    string
	// Stripped is the path after the stage prefix was removed.
	Stripped string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
		b.WriteString("\n\npath without stage: ")
		b.WriteString(e.Stripped)
	}
	return b.String()
}

// Resolve derives the source and target keys from path after removing the
// "/"+stage prefix.
func Resolve(path, stage string) (Keys, error) {
	stripped := StripStage(path, stage)

	m := pathPattern.FindStringSubmatch(stripped)
	if m == nil || m[0] != stripped {
		return Keys{}, &ParseError{Message: msgWrongPath, Path: path, Stripped: stripped}
	}

	prefix, dims, fileName := strings.TrimPrefix(m[1], "/"), m[2], m[3]

	width, height, err := ParseDimensions(dims)
	if err != nil {
		return Keys{}, err
	}

	return Keys{
		Path:       prefix,
		Dimensions: dims,
		FileName:   fileName,
		SourceKey:  SourceKey(prefix, fileName),
		TargetKey:  TargetKey(prefix, dims, fileName),
		Width:      width,
		Height:     height,
	}, nil
}

// StripStage removes a single leading "/"+stage from path. An empty stage
// leaves the path untouched.
func StripStage(path, stage string) string {
	if stage == "" {
		return path
	}
	return strings.TrimPrefix(path, "/"+stage)
}

// ParseDimensions splits a "<width>x<height>" token. Zero values are
// accepted; the codec decides whether it can produce such an image.
func ParseDimensions(token string) (width, height int, err error) {
	m := dimensionPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, 0, &ParseError{Message: msgWrongDimensions}
	}

	width, err = strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, &ParseError{Message: msgWrongDimensions}
	}
	height, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, &ParseError{Message: msgWrongDimensions}
	}
	return width, height, nil
}

// SourceKey joins a normalized prefix path and a file name.
func SourceKey(prefix, fileName string) string {
	return prefix + fileName
}

// TargetKey places the dimension token between the prefix path and the file name.
func TargetKey(prefix, dims, fileName string) string {
	return prefix + dims + "/" + fileName
}
