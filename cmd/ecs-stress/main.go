package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/JeremyLoy/config"

	"github.com/plus3/archon/ecs"
)

// stressConfig is the environment-tunable knob set for the harness. Any
// field left unset in the environment keeps the default set in loadConfig.
type stressConfig struct {
	Duration       time.Duration `config:"STRESS_DURATION"`
	Entities       int           `config:"STRESS_ENTITIES"`
	HealthRegen    float64       `config:"STRESS_HEALTH_REGEN"`
	GCPauseMetrics bool          `config:"STRESS_GC_METRICS"`
}

func loadConfig() stressConfig {
	cfg := stressConfig{
		Duration:    10 * time.Second,
		Entities:    10000,
		HealthRegen: 2.0,
	}
	if err := config.FromEnv().To(&cfg); err != nil {
		panic(err)
	}
	return cfg
}

func main() {
	cfg := loadConfig()

	log.Println("Starting ECS stress test...")

	world := ecs.Open()
	scheduler := ecs.NewScheduler(world)

	movement, err := newMovementSystem(world)
	if err != nil {
		log.Fatalf("compile movement system: %v", err)
	}
	healthRegen, err := newHealthRegenSystem(world, cfg.HealthRegen)
	if err != nil {
		log.Fatalf("compile health regen system: %v", err)
	}
	culling, err := newCullingSystem(world)
	if err != nil {
		log.Fatalf("compile culling system: %v", err)
	}

	scheduler.Register(movement)
	scheduler.Register(healthRegen)
	scheduler.Register(culling)

	log.Printf("Populating world with %d entities...\n", cfg.Entities)
	for i := 0; i < cfg.Entities; i++ {
		spawnRandomEntity(world)
	}
	log.Println("Population complete.")

	report := &Report{
		Duration:       cfg.Duration,
		Entities:       cfg.Entities,
		Components:     5,
		Systems:        3,
		GCPauseMetrics: cfg.GCPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", cfg.Duration)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			scheduler.Once(float64(deltaTime) / float64(time.Second))
			updateDuration := time.Since(updateStart)

			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
			totalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.FinalEntities = world.EntityCount()
	report.FinalArchetypes = len(world.Archetypes())
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Simulation finished.")

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	log.Println("Stress test complete.")
}
