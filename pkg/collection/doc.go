// Package collection implements the logical collection engines for seqviz:
// a positional array, a FIFO queue and a LIFO stack over a resizable slice.
//
// The engines have no visual concern and never block. Presenters in
// package presenter store visual nodes in them and read their contents
// through the Items accessor.
package collection
