package main

import (
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/milk9111/waterball/prefabs"
	"gopkg.in/yaml.v3"
)

func main() {
	sceneName := flag.String("scene", "default", "scene name in prefabs/scenes/")
	instance := flag.String("instance", "ball", "name of the ball instance to vary")
	massList := flag.String("masses", "5,10,20,40,100", "comma separated masses to try")
	ticks := flag.Int("ticks", 0, "ticks per run (0 uses the scene's default)")
	flag.Parse()

	masses, err := parseMasses(*massList)
	if err != nil {
		log.Fatalf("masses: %v", err)
	}

	scene, err := prefabs.LoadScene(*sceneName)
	if err != nil {
		log.Fatal(err)
	}

	results, err := runSweep(scene, *instance, masses, *ticks)
	if err != nil {
		log.Fatal(err)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(results); err != nil {
		log.Fatal(err)
	}
	_ = enc.Close()
}

func parseMasses(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
