// Package astro implements the time and reference-frame model: epochs on
// a continuous time scale, sidereal time, and the precession, nutation
// and annual-aberration reductions between the mean J2000 frame and the
// apparent frame of date.
//
// The reduction follows the classic IAU 1976 precession and IAU 1980
// nutation models, which agree with modern reference ephemerides to well
// under an arcsecond for the epochs this model accepts. The coefficient
// tables are process-wide immutable data; nothing in this package has
// mutable state or performs I/O.
package astro
