/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// BlockGroup is the closed category of a card. It determines the card's
// canonical display colour.
type BlockGroup string

const (
	GroupFunction  BlockGroup = "function"
	GroupComponent BlockGroup = "component"
	GroupButton    BlockGroup = "button"
	GroupStack     BlockGroup = "stack"
	GroupOther     BlockGroup = "other"
)

// Groups lists every group in display order.
var Groups = []BlockGroup{GroupFunction, GroupComponent, GroupButton, GroupStack, GroupOther}

type groupInfo struct {
	color     colorful.Color
	colorName string
	label     string
	legacy    string
}

var groupTable = map[BlockGroup]groupInfo{
	GroupFunction:  {colorful.Color{R: 0.2, G: 0.6, B: 1.0}, "Blue", "Function", "関数"},
	GroupComponent: {colorful.Color{R: 0.3, G: 0.8, B: 0.3}, "Green", "Component", "コンポーネント"},
	GroupButton:    {colorful.Color{R: 1.0, G: 0.4, B: 0.4}, "Red", "Button", "ボタン"},
	GroupStack:     {colorful.Color{R: 0.8, G: 0.6, B: 1.0}, "Purple", "Stack", "Stack"},
	GroupOther:     {colorful.Color{R: 0.9, G: 0.7, B: 0.3}, "Orange", "Other", "その他"},
}

// Valid reports whether g is one of the five known groups.
func (g BlockGroup) Valid() bool {
	_, ok := groupTable[g]
	return ok
}

// Color is the canonical display colour of the group. Unknown groups use GroupOther's.
func (g BlockGroup) Color() colorful.Color {
	if info, ok := groupTable[g]; ok {
		return info.color
	}
	return groupTable[GroupOther].color
}

// ColorName is the human-readable name of the group's colour.
func (g BlockGroup) ColorName() string {
	if info, ok := groupTable[g]; ok {
		return info.colorName
	}
	return groupTable[GroupOther].colorName
}

// Label is the display name of the group.
func (g BlockGroup) Label() string {
	if info, ok := groupTable[g]; ok {
		return info.label
	}
	return string(g)
}

func (g BlockGroup) String() string { return string(g) }

// ParseGroup resolves a group from its key, its label (case-insensitive) or the
// label used by the first release of the app, which stored groups by label.
func ParseGroup(s string) (BlockGroup, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, g := range Groups {
		info := groupTable[g]
		if strings.EqualFold(s, string(g)) || strings.EqualFold(s, info.label) || s == info.legacy {
			return g, true
		}
	}
	return "", false
}
