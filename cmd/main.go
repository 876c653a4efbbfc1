package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/ricewatch/ricewatch-api/internal/baseline"
	"github.com/ricewatch/ricewatch-api/internal/geo"
	"github.com/ricewatch/ricewatch-api/internal/geocoding"
	"github.com/ricewatch/ricewatch-api/internal/notification"
	"github.com/ricewatch/ricewatch-api/internal/sentinel"
	"github.com/ricewatch/ricewatch-api/internal/vi"
	"github.com/ricewatch/ricewatch-api/output"
)

func printBanner() {
	figure1 := figure.NewFigure("RiceWatch", "isometric1", true)
	bannercolor.Green(figure1.String())
	fmt.Println()
}

type prompt struct {
	reader *bufio.Reader
}

func (p *prompt) line(label string) string {
	fmt.Printf("\033[34m%s: \033[0m", label)
	text, _ := p.reader.ReadString('\n')
	return strings.TrimSpace(text)
}

func (p *prompt) date(label string) (time.Time, bool) {
	raw := p.line(label + " (YYYY-MM-DD)")
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		fmt.Printf("\n\033[31mInvalid date %q. Please use YYYY-MM-DD.\033[0m\n", raw)
		return time.Time{}, false
	}
	return t, true
}

func (p *prompt) field() (farm, fieldID string) {
	farm = p.line("Enter the farm name")
	fieldID = p.line("Enter the field id")
	return farm, fieldID
}

func analyzeSeries(p *prompt) {
	fmt.Println("\033[33m\nWarning:\033[0m")
	fmt.Println("\033[33m- A '.geojson' file with the farm name should be present in data/geojsons folder.\033[0m")
	fmt.Println("\033[33m- The file's features should carry the desired field in their field_id property.\n\033[0m")

	farm, fieldID := p.field()
	parcel, err := geo.LoadField(farm, fieldID)
	if err != nil {
		fmt.Printf("\n\033[31mError loading field: %s\033[0m\n", err.Error())
		return
	}

	viType, err := vi.ParseVIType(p.line("Enter the index (NDVI, EVI, GNDVI, NDWI, SAVI, VCI)"))
	if err != nil {
		fmt.Printf("\n\033[31m%s\033[0m\n", err.Error())
		return
	}
	start, ok := p.date("Enter the start date")
	if !ok {
		return
	}
	end, ok := p.date("Enter the end date")
	if !ok {
		return
	}

	fetcher, err := sentinel.NewFetcher()
	if err != nil {
		fmt.Printf("\n\033[31m%s\033[0m\n", err.Error())
		return
	}

	opts := vi.DefaultOptions()
	if viType == vi.VCI {
		opts.Baseline = baseline.NewStore(farm + "_" + fieldID)
	}
	bar := progressbar.Default(-1, "Processing scenes")
	opts.Progress = func() { bar.Add(1) }

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	result, err := vi.Calculate(ctx, fetcher, parcel, viType, vi.DateRange{Start: start, End: end}, opts)
	bar.Finish()
	fmt.Println()
	if err != nil {
		fmt.Printf("\n\033[31mError computing series: %s\033[0m\n", err.Error())
		notification.SendErrorReport(fmt.Sprintf("Error computing %s series for %s/%s: %s", viType, farm, fieldID, err.Error()))
		return
	}

	fmt.Printf("\033[32mScenes considered: %d, discarded by cloud prefilter: %d\033[0m\n",
		result.ScenesConsidered, result.ScenesDiscardedCloud)
	if len(result.Series) == 0 {
		fmt.Printf("\033[33mEmpty series: %s\033[0m\n", result.Reason)
		return
	}

	for _, point := range result.Series {
		value := "no data"
		if point.Value != nil {
			value = fmt.Sprintf("%.4f", *point.Value)
		}
		flag := ""
		if point.Unreliable {
			flag = " (unreliable)"
		}
		fmt.Printf("\033[32m%s  %s  validity %.0f%%%s  %s\033[0m\n",
			point.Date.Format("2006-01-02"), value, point.ValidFraction*100, flag, point.Analysis)
	}

	if monthly := result.Series.MonthlyAverages(); len(monthly) > 1 {
		fmt.Println("\033[32m\nMonthly averages:\033[0m")
		for _, m := range monthly {
			fmt.Printf("\033[32m%s  %.4f  (%d observations)\033[0m\n", m.Date.Format("2006-01"), m.Value, m.Count)
		}
	}

	outputName := fmt.Sprintf("%s_%s_%s_%s", farm, fieldID, viType, end.Format("2006-01-02"))
	csvPath, err := output.CreateSeriesCSV(result.Series, outputName)
	if err != nil {
		fmt.Printf("\n\033[31mError exporting CSV: %s\033[0m\n", err.Error())
		return
	}

	fmt.Printf("\n\033[32mSuccessful analysis!\n Series exported to: %s\033[0m\n", csvPath)
	notification.SendRunReport(fmt.Sprintf("%s series for %s/%s: %d points (%d scenes, %d cloud-discarded)\nCSV: %s",
		viType, farm, fieldID, len(result.Series), result.ScenesConsidered, result.ScenesDiscardedCloud, csvPath))
}

func renderOverlay(p *prompt) {
	farm, fieldID := p.field()
	parcel, err := geo.LoadField(farm, fieldID)
	if err != nil {
		fmt.Printf("\n\033[31mError loading field: %s\033[0m\n", err.Error())
		return
	}
	viType, err := vi.ParseVIType(p.line("Enter the index (NDVI, EVI, GNDVI, NDWI, SAVI, VCI)"))
	if err != nil {
		fmt.Printf("\n\033[31m%s\033[0m\n", err.Error())
		return
	}
	day, ok := p.date("Enter the date to render")
	if !ok {
		return
	}

	fetcher, err := sentinel.NewFetcher()
	if err != nil {
		fmt.Printf("\n\033[31m%s\033[0m\n", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Look back two weeks so a clouded target date still yields a scene.
	dates := vi.DateRange{Start: day.AddDate(0, 0, -14), End: day}
	opts := vi.DefaultOptions()
	scenes, _, err := fetcher.FetchScenes(ctx, parcel, dates, opts.MaxCloudCover)
	if err != nil {
		fmt.Printf("\n\033[31mError fetching scenes: %s\033[0m\n", err.Error())
		return
	}

	scene := &scenes[len(scenes)-1]
	mask := vi.BuildMask(scene, opts.Mask)
	var source vi.BaselineSource
	if viType == vi.VCI {
		source = baseline.NewStore(farm + "_" + fieldID)
	}
	raster, err := vi.ComputeIndex(scene, viType, mask, source)
	if err != nil {
		fmt.Printf("\n\033[31mError computing index: %s\033[0m\n", err.Error())
		return
	}

	outputName := fmt.Sprintf("%s_%s_%s_%s_overlay", farm, fieldID, viType, scene.Date.Format("2006-01-02"))
	path, dataURL, err := output.CreateOverlayImage(raster, viType, outputName)
	if err != nil {
		fmt.Printf("\n\033[31mError rendering overlay: %s\033[0m\n", err.Error())
		return
	}
	fmt.Printf("\n\033[32mOverlay for %s saved at: %s\033[0m\n", scene.Date.Format("2006-01-02"), path)
	fmt.Printf("\033[32mData URL length: %d bytes\033[0m\n", len(dataURL))
}

func seedBaseline(p *prompt) {
	fmt.Println("\033[33m\nThe VCI baseline is built from past NDVI seasons of the same field.\033[0m")
	fmt.Println("\033[33mPick a historical range covering at least one full growing cycle.\n\033[0m")

	farm, fieldID := p.field()
	parcel, err := geo.LoadField(farm, fieldID)
	if err != nil {
		fmt.Printf("\n\033[31mError loading field: %s\033[0m\n", err.Error())
		return
	}
	start, ok := p.date("Enter the history start date")
	if !ok {
		return
	}
	end, ok := p.date("Enter the history end date")
	if !ok {
		return
	}

	fetcher, err := sentinel.NewFetcher()
	if err != nil {
		fmt.Printf("\n\033[31m%s\033[0m\n", err.Error())
		return
	}

	bar := progressbar.Default(-1, "Computing NDVI history")
	opts := vi.DefaultOptions()
	opts.Progress = func() { bar.Add(1) }

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	result, err := vi.Calculate(ctx, fetcher, parcel, vi.NDVI, vi.DateRange{Start: start, End: end}, opts)
	bar.Finish()
	fmt.Println()
	if err != nil {
		fmt.Printf("\n\033[31mError computing NDVI history: %s\033[0m\n", err.Error())
		return
	}

	store := baseline.NewStore(farm + "_" + fieldID)
	store.ObserveSeries(result.Series)
	if err := store.Flush(); err != nil {
		fmt.Printf("\n\033[31mError saving baseline: %s\033[0m\n", err.Error())
		return
	}
	fmt.Printf("\033[32mBaseline updated from %d observations; %d calendar months covered.\033[0m\n",
		len(result.Series), store.Months())
}

func showAddress(p *prompt) {
	farm, fieldID := p.field()
	parcel, err := geo.LoadField(farm, fieldID)
	if err != nil {
		fmt.Printf("\n\033[31mError loading field: %s\033[0m\n", err.Error())
		return
	}
	lat, lng, err := geo.Centroid(parcel)
	if err != nil {
		fmt.Printf("\n\033[31m%s\033[0m\n", err.Error())
		return
	}

	address, err := geocoding.NewGeocoder().ReverseGeocode(lat, lng)
	if err != nil {
		fmt.Printf("\n\033[31mError reverse geocoding: %s\033[0m\n", err.Error())
		return
	}
	fmt.Printf("\n\033[32mField centroid: %.6f, %.6f\n Address: %s\033[0m\n", lat, lng, address)
}

func listFields(p *prompt) {
	farm := p.line("Enter the farm name")
	ids, err := geo.ListFields(farm)
	if err != nil {
		fmt.Printf("\n\033[31mError reading farm file: %s\033[0m\n", err.Error())
		return
	}
	if len(ids) == 0 {
		fmt.Printf("\n\033[31mNo field ids found in the farm file.\033[0m\n")
		return
	}
	fmt.Println("\033[32m\nAvailable fields:\033[0m")
	for _, id := range ids {
		fmt.Printf("\033[32m- %s\033[0m\n", id)
	}
}

func initCLI() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mExiting...\033[0m\n")
			stack := debug.Stack()
			if err := notification.SendErrorReport(fmt.Sprintf("RiceWatch CLI panic:\n\n%v\n\nStack trace:\n%s", r, stack)); err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
		}
	}()
	printBanner()

	p := &prompt{reader: bufio.NewReader(os.Stdin)}
	for {
		fmt.Println("\033[34m===================\033[0m")
		fmt.Println("\033[34m1. Analyze a field's vegetation-index time series\033[0m")
		fmt.Println("\033[34m2. Render a VI overlay image\033[0m")
		fmt.Println("\033[34m3. Seed the VCI baseline from NDVI history\033[0m")
		fmt.Println("\033[34m4. Show a field's address\033[0m")
		fmt.Println("\033[34m5. List fields of a farm\033[0m")
		fmt.Println("\033[34m6. Exit\033[0m")
		fmt.Println("\033[34mEnter your choice:\033[0m")

		var choice int
		if _, err := fmt.Scan(&choice); err != nil {
			fmt.Printf("\n\033[31mInvalid input. Please enter a number.\033[0m\n")
			fmt.Scanln()
			continue
		}
		fmt.Scanln() // consume the trailing newline before prompting

		switch choice {
		case 1:
			analyzeSeries(p)
		case 2:
			renderOverlay(p)
		case 3:
			seedBaseline(p)
		case 4:
			showAddress(p)
		case 5:
			listFields(p)
		case 6:
			println("Exiting...")
			return
		default:
			println("Invalid choice. Please try again.")
		}
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		// Fall back to the repo root when running from cmd/.
		godotenv.Load("../.env")
	}
	logrus.SetLevel(logrus.InfoLevel)
	initCLI()
}
