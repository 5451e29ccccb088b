/*
Command zcomp compares redshift fitter results against generation
truth.

It is the comparison stage of specz as a standalone command: given a
truth file and one or more ZBEST result files, it matches each result
set to the truth, computes recession velocity offsets

  dv = c (zfit - ztrue) / (1 + ztrue)

and prints summary statistics per result file.  Giving several result
files, for example a dark run and a bright-moon run over the same
templates, puts their statistics side by side.

  Usage: zcomp [options] <truth-file> <zbest-file>...
    -plot <dir>    write comparison scatter plots into dir
    -v             display version and copyright

Results join the truth by TARGETID when the fitter propagated
identifiers; otherwise rows align by order and the row counts must
match.

Sample run:

  zcomp qso-truth.fits qso-dark-zbest.fits qso-moon-zbest.fits

                                 dv (km/s)
  Run             N     mean   stddev     NMAD  mean|dv|  |dv|>1000
  qso-dark       50     -3.1     41.8     38.5      33.0          0
  qso-moon       50     12.4    205.6     96.2     131.7          2

-------------
Public domain.
*/
package main
