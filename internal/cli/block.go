package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/validation"
)

type BlockAddCmd struct {
	Title string `arg:"" help:"Block title (class, shift, meeting)."`
	Start string `short:"s" help:"Start (YYYY-MM-DD HH:MM)." required:""`
	End   string `short:"e" help:"End (YYYY-MM-DD HH:MM)." required:""`
}

func (c *BlockAddCmd) Run(ctx *Context) error {
	start, err := ctx.parseWhen(c.Start)
	if err != nil {
		return err
	}
	end, err := ctx.parseWhen(c.End)
	if err != nil {
		return err
	}
	if err := validation.ValidateBlockInput(validation.BlockInput{Title: c.Title, StartAt: start, EndAt: end}); err != nil {
		return err
	}

	block := models.FixedBlock{
		ID:      uuid.New().String(),
		Title:   c.Title,
		StartAt: start,
		EndAt:   end,
	}
	if err := ctx.Store.AddFixedBlock(block); err != nil {
		return fmt.Errorf("failed to save block: %w", err)
	}

	ctx.printf("Added block: %s (%s) %s\n", c.Title, shortID(block.ID), formatSpan(start, end))
	return nil
}

type BlockListCmd struct{}

func (c *BlockListCmd) Run(ctx *Context) error {
	blocks, err := ctx.blocks()
	if err != nil {
		return fmt.Errorf("failed to get blocks: %w", err)
	}
	if len(blocks) == 0 {
		ctx.println("No blocks found")
		return nil
	}

	ctx.println(titleStyle.Render("Fixed blocks:"))
	for _, b := range blocks {
		ctx.printf("  %s %s - %s\n",
			labelStyle.Render(shortID(b.ID)), valueStyle.Render(b.Title),
			formatSpan(b.StartAt, b.EndAt))
	}
	return nil
}

type BlockDeleteCmd struct {
	ID string `arg:"" help:"Block ID (or unique prefix) to delete."`
}

func (c *BlockDeleteCmd) Run(ctx *Context) error {
	blocks, err := ctx.blocks()
	if err != nil {
		return fmt.Errorf("failed to get blocks: %w", err)
	}

	var match *models.FixedBlock
	for i := range blocks {
		if blocks[i].ID == c.ID {
			match = &blocks[i]
			break
		}
		if strings.HasPrefix(blocks[i].ID, c.ID) {
			if match != nil {
				return fmt.Errorf("block id prefix %q is ambiguous", c.ID)
			}
			match = &blocks[i]
		}
	}
	if match == nil {
		return fmt.Errorf("failed to find block with ID %s", c.ID)
	}

	if err := ctx.Store.DeleteFixedBlock(match.ID); err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
	}
	ctx.printf("Deleted block: %s (ID: %s)\n", match.Title, match.ID)
	return nil
}
