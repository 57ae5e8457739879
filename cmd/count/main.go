package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"seedcounter/internal/config"
	"seedcounter/internal/logger"
	"seedcounter/internal/render"
	"seedcounter/internal/service/ai"
	"seedcounter/internal/service/counting"

	"github.com/google/uuid"
	"gocv.io/x/gocv"
)

type output struct {
	Image                 string  `json:"image"`
	SeedlingCount         int     `json:"seedling_count"`
	EmptyCellCount        int     `json:"empty_cell_count"`
	TotalCavities         int     `json:"total_cavities"`
	GerminationPercentage float64 `json:"germination_percentage"`
	OutputImage           string  `json:"output_image"`
}

func main() {
	imagePath := flag.String("image", "", "Tray image to count")
	outDir := flag.String("out", ".", "Directory for the annotated image")
	asJSON := flag.Bool("json", false, "Print the result as JSON")
	verbose := flag.Bool("v", false, "Log detector and engine activity to stderr")
	flag.Parse()

	if *imagePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	lg := logger.Nop()
	if *verbose {
		lg = logger.New(os.Stderr, os.Stderr)
	}

	style, err := render.DefaultStyle().WithColors(cfg.SeedlingColor, cfg.EmptyCellColor)
	if err != nil {
		log.Fatalf("Invalid box color: %v", err)
	}

	models, err := ai.LoadModels(cfg, lg)
	if err != nil {
		log.Fatalf("Failed to load detection models: %v", err)
	}
	defer models.Close()

	img := gocv.IMRead(*imagePath, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		log.Fatalf("Could not read image %s", *imagePath)
	}

	seedlings, emptyCells, err := models.DetectAll(context.Background(), img)
	if err != nil {
		log.Fatalf("Detection failed: %v", err)
	}

	engine := counting.NewEngine(cfg.IoUThreshold, render.NewRenderer(style), lg)
	result, err := engine.Process(seedlings, emptyCells, img)
	if err != nil {
		log.Fatalf("Counting failed: %v", err)
	}
	defer result.Close()

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	outPath := filepath.Join(*outDir, fmt.Sprintf("result_%s.jpg", uuid.NewString()))
	if ok := gocv.IMWrite(outPath, result.Annotated); !ok {
		log.Fatalf("Failed to write %s", outPath)
	}

	out := output{
		Image:                 *imagePath,
		SeedlingCount:         result.SeedlingCount,
		EmptyCellCount:        result.EmptyCellCount,
		TotalCavities:         result.TotalCavities,
		GerminationPercentage: result.GerminationPercentage,
		OutputImage:           outPath,
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
		return
	}

	fmt.Printf("Image:            %s\n", out.Image)
	fmt.Printf("Seedlings:        %d\n", out.SeedlingCount)
	fmt.Printf("Empty cells:      %d\n", out.EmptyCellCount)
	fmt.Printf("Total cavities:   %d\n", out.TotalCavities)
	fmt.Printf("Germination:      %.2f%%\n", out.GerminationPercentage)
	fmt.Printf("Annotated image:  %s\n", out.OutputImage)
}
