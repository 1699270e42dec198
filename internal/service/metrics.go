package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garage_actions_total",
			Help: "Player actions by name and result",
		},
		[]string{"action", "result"},
	)
	CoinsCollected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "garage_coins_collected_total",
			Help: "Game coins credited by collections and settlements",
		},
	)
	RacesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garage_races_total",
			Help: "Races by difficulty and result",
		},
		[]string{"difficulty", "result"},
	)
	PlayersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "garage_players_created_total",
			Help: "New player documents created on first load",
		},
	)
)

func init() {
	prometheus.MustRegister(ActionsTotal)
	prometheus.MustRegister(CoinsCollected)
	prometheus.MustRegister(RacesTotal)
	prometheus.MustRegister(PlayersCreated)
}
