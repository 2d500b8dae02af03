// Package scheme defines the fixed set of historical Greek pronunciation
// schemes and the engine key each one maps to.
package scheme
