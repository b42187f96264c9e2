package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mpetrik/photo-people/internal/config"
	"github.com/mpetrik/photo-people/internal/database"
	"github.com/mpetrik/photo-people/internal/detector"
)

var facesExtractCmd = &cobra.Command{
	Use:   "extract [directory]",
	Short: "Detect and store face embeddings for all photos in a directory",
	Long: `Scan a directory tree for photos, detect faces in each one and store
their embeddings. Each face is stored with its embedding (512 dimensions),
bounding box and detection score.

The process can be stopped and resumed - already processed photos are skipped.

Examples:
  # Detect faces in a photo library (5 concurrent workers)
  photo-people faces extract ~/Pictures

  # Use different concurrency
  photo-people faces extract ~/Pictures --concurrency 3

  # Limit number of photos to process
  photo-people faces extract ~/Pictures --limit 100`,
	Args: cobra.ExactArgs(1),
	RunE: runFacesExtract,
}

func init() {
	facesCmd.AddCommand(facesExtractCmd)

	facesExtractCmd.Flags().Int("concurrency", 5, "Number of parallel workers")
	facesExtractCmd.Flags().Int("limit", 0, "Limit number of photos to process (0 = no limit)")
	facesExtractCmd.Flags().Int("max-size", 2048, "Downscale photos above this dimension before upload (0 = never)")
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// listPhotos walks the directory tree and returns paths of image files.
func listPhotos(dir string) ([]string, error) {
	var photos []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if imageExtensions[strings.ToLower(filepath.Ext(path))] {
			photos = append(photos, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	return photos, nil
}

func runFacesExtract(cmd *cobra.Command, args []string) error {
	concurrency := mustGetInt(cmd, "concurrency")
	limit := mustGetInt(cmd, "limit")
	maxSize := mustGetInt(cmd, "max-size")

	ctx := context.Background()
	cfg := config.Load()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	faceCount, _ := store.CountFaces(ctx)
	fmt.Printf("Faces in database: %d\n", faceCount)

	client := detector.NewClient(cfg.Detector.URL)

	fmt.Println("Scanning photo directory...")
	allPhotos, err := listPhotos(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Total photos found: %d\n", len(allPhotos))

	// Filter out photos that already have faces processed
	var photosToProcess []string
	for _, path := range allPhotos {
		has, err := store.HasFaces(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to check faces: %w", err)
		}
		if !has {
			photosToProcess = append(photosToProcess, path)
		}
	}

	if limit > 0 && len(photosToProcess) > limit {
		photosToProcess = photosToProcess[:limit]
	}

	if len(photosToProcess) == 0 {
		fmt.Println("All photos already have faces processed!")
		return nil
	}

	fmt.Printf("Photos to process: %d (skipping %d already processed)\n\n",
		len(photosToProcess), len(allPhotos)-len(photosToProcess))

	bar := progressbar.NewOptions(len(photosToProcess),
		progressbar.OptionSetDescription("Detecting faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	var successCount, errorCount, totalFaces int
	var mu sync.Mutex

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, path := range photosToProcess {
		wg.Add(1)
		go func(photoPath string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			fail := func() {
				mu.Lock()
				errorCount++
				mu.Unlock()
				bar.Add(1)
			}

			imageData, err := os.ReadFile(photoPath)
			if err != nil {
				fail()
				return
			}

			if maxSize > 0 {
				// Bounding boxes are stored in the uploaded image's pixel
				// space, so downscaling must happen before detection.
				resized, err := detector.ResizeImage(imageData, maxSize)
				if err != nil {
					fail()
					return
				}
				imageData = resized
			}

			result, err := client.DetectFaces(ctx, imageData)
			if err != nil {
				fail()
				return
			}

			faces := make([]database.StoredFace, len(result.Faces))
			for i, f := range result.Faces {
				faces[i] = database.StoredFace{
					PhotoPath:  photoPath,
					Confidence: f.DetScore,
					Embedding:  f.Embedding,
				}
				if len(f.BBox) == 4 {
					faces[i].X = int(f.BBox[0])
					faces[i].Y = int(f.BBox[1])
					faces[i].Width = int(f.BBox[2] - f.BBox[0])
					faces[i].Height = int(f.BBox[3] - f.BBox[1])
				}
			}

			if err := store.InsertFaces(ctx, faces); err != nil {
				fail()
				return
			}

			mu.Lock()
			successCount++
			totalFaces += len(faces)
			mu.Unlock()
			bar.Add(1)
		}(path)
	}

	wg.Wait()
	fmt.Println()

	finalFaceCount, _ := store.CountFaces(ctx)
	fmt.Printf("\nCompleted: %d photos processed, %d errors\n", successCount, errorCount)
	fmt.Printf("New faces detected: %d\n", totalFaces)
	fmt.Printf("Total faces in database: %d\n", finalFaceCount)

	return nil
}
