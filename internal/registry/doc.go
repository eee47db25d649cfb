// Package registry maps step types to their Go handlers and argument
// contracts. The launcher ships a fixed set of step types, registered at
// startup by the packages under steps/.
package registry
