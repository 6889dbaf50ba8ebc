package planner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	plansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripplanner_plans_total",
		Help: "Planning runs by outcome.",
	}, []string{"outcome"})

	citiesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripplanner_cities_total",
		Help: "Cities processed by outcome.",
	}, []string{"outcome"})

	tripsFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripplanner_trips_found_total",
		Help: "Suitable trip windows found across all cities.",
	})

	forecastCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripplanner_forecast_cache_total",
		Help: "Forecast cache lookups by result.",
	}, []string{"result"})
)
