// Package model defines the data model shared by every DEVS network: the
// opaque Pin identity, the Bag of values carried by one output/input, the
// Atomic and MealyAtomic leaf contracts, and the Coupled container with its
// routing table.
//
// model has no notion of time advance or scheduling; it only describes the
// shape of a network and the rules for wiring it together. Package sim
// drives the network described here through time; package router resolves
// one produced value through the coupling graph described here.
package model
