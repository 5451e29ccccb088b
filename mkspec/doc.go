/*
Command mkspec generates template spectra and writes the simulator
input file.

It is the first pipeline stage of specz as a standalone command, for
preparing input files to be simulated and fitted by hand or on a batch
system.

Usage

  mkspec [options]             generate templates, write spectra + truth
  mkspec -v                    display version and copyright

  Options:
    -t <class>    target class (QSO ELG LRG BGS STD WD STAR)
    -n <count>    number of templates
    -o <file>     output spectra file
    -s <seed>     random seed
    -r            repeatable output for a fixed seed

Output

Two files are written.  The spectra file holds a WAVELENGTH extension
(Angstrom) and a FLUX extension (1e-17 erg/(s cm2 Angstrom), one row
per object).  A truth file, named after the spectra file, holds TRUTH
and TRUTH_TYPE binary tables with the per-object generation metadata.

By default files land in the directory named by the SCRATCH environment
variable, or the current directory without it.

-------------
Public domain.
*/
package main
