/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"funcards/internal/canvas"
	"funcards/internal/domain"
	"funcards/internal/geometry"
)

// dragCmd replays one complete drag gesture: grab, move by the given
// screen delta, release.
func (a *App) dragCmd() *cobra.Command {
	var (
		dx, dy, zoom float64
		selected     []string
	)
	cmd := &cobra.Command{
		Use:   "drag ID",
		Short: "Drag a block by a screen delta and drop it",
		Long: `Drag a block by a screen delta and drop it.

Dropping a leaf on a container's drop zone moves it into the container.
Dragging a container row outside its container lifts it onto the page.
With --select the listed blocks are selected first and move together;
selection moves never change containment.`,
		Example: `
funcards drag 3f2a --dx 90 --dy 30
funcards drag 3f2a --select 3f2a,77c1 --dx 60 --dy 0
funcards drag 3f2a --zoom 2 --dx 120 --dy 0
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if zoom <= 0 {
				return &domain.ValidationError{Field: "zoom", Reason: "must be positive"}
			}
			ctx := cmd.Context()
			if err := a.open(ctx); err != nil {
				return err
			}
			p, err := a.page()
			if err != nil {
				return err
			}
			loc, err := findBlock(p, args[0])
			if err != nil {
				return err
			}
			if zoom != 1 {
				a.engine.ZoomEnded(p.ID, zoom)
			}
			targets := make([]canvas.Target, 0, len(selected))
			for _, ref := range selected {
				sel, err := findBlock(p, ref)
				if err != nil {
					return err
				}
				if sel.target.Kind == canvas.TargetChild {
					return &domain.ValidationError{Field: "select", Reason: fmt.Sprintf("%s is a container row; rows cannot be selected", shortID(sel.card.ID))}
				}
				targets = append(targets, sel.target)
			}
			if len(targets) > 0 {
				a.engine.SetSelectionMode(p.ID, true)
				for _, tg := range targets {
					if err := a.engine.Tap(ctx, p.ID, tg); err != nil {
						return err
					}
				}
			}

			delta := geometry.V(dx, dy)
			if d := a.engine.BeginDrag(p.ID, loc.target); !d.Active() {
				return fmt.Errorf("block %s cannot be dragged", shortID(loc.card.ID))
			}
			a.engine.MoveDrag(p.ID, delta)
			d, err := a.engine.EndDrag(ctx, p.ID, delta)
			if err != nil {
				return err
			}
			a.reportDrop(cmd, p.ID, loc.card.ID, d)
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&dx, "dx", 0, "horizontal screen delta")
	f.Float64Var(&dy, "dy", 0, "vertical screen delta")
	f.Float64Var(&zoom, "zoom", 1, "view scale the delta is measured at")
	f.StringSliceVar(&selected, "select", nil, "select these blocks first and move them together")
	return cmd
}

func (a *App) reportDrop(cmd *cobra.Command, pageID, blockID uuid.UUID, d canvas.Drag) {
	out := cmd.OutOrStdout()
	switch {
	case d.Phase == canvas.Reparented && d.Into == uuid.Nil:
		fmt.Fprintf(out, "%s %s onto the page\n", okColor.Sprint("Lifted"), shortID(blockID))
	case d.Phase == canvas.Reparented:
		fmt.Fprintf(out, "%s %s into container %s\n", okColor.Sprint("Moved"), shortID(blockID), shortID(d.Into))
	case d.Batch:
		fmt.Fprintf(out, "%s %d selected blocks\n", okColor.Sprint("Moved"), d.Selection.Len())
	default:
		pos := "?"
		if p, ok := a.store.Page(pageID); ok {
			if loc, err := findBlock(p, blockID.String()); err == nil {
				pos = formatPt(loc.card.Position)
			}
		}
		fmt.Fprintf(out, "%s %s to %s\n", okColor.Sprint("Moved"), shortID(blockID), pos)
	}
}

func (a *App) flipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flip ID",
		Short: "Turn a block over",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			p, err := a.page()
			if err != nil {
				return err
			}
			loc, err := findBlock(p, args[0])
			if err != nil {
				return err
			}
			if err := a.engine.Flip(cmd.Context(), p.ID, loc.target); err != nil {
				return err
			}
			side := "back"
			if loc.card.IsFlipped {
				side = "front"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now shows its %s\n", shortID(loc.card.ID), side)
			return nil
		},
	}
}

func (a *App) rowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "row CONTAINER INDEX up|down",
		Short: "Move a container row one step up or down",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return &domain.ValidationError{Field: "index", Reason: fmt.Sprintf("%q is not a number", args[1])}
			}
			var dir domain.Direction
			switch strings.ToLower(args[2]) {
			case "up":
				dir = domain.Up
			case "down":
				dir = domain.Down
			default:
				return &domain.ValidationError{Field: "direction", Reason: "want up or down"}
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			p, err := a.page()
			if err != nil {
				return err
			}
			loc, err := findBlock(p, args[0])
			if err != nil {
				return err
			}
			if loc.target.Kind != canvas.TargetWrapper {
				return fmt.Errorf("%s is not a container", shortID(loc.card.ID))
			}
			return a.engine.MoveRow(cmd.Context(), p.ID, loc.card.ID, index, dir)
		},
	}
}
