/*
Command specz drives an end-to-end synthetic redshift pipeline: it
generates noiseless template spectra for a survey target class, hands
them to an external noise simulator, runs an external redshift fitter
over the noisy spectra, and compares the fitted redshifts against the
generation truth under one or more sky-brightness conditions.

Contents

  Program overview
  Command line usage
  Configuration
  Environment
  Files

Program overview

The pipeline has five stages, run strictly in sequence, each handing a
completed file to the next:

1. Template generation.  Noiseless flux spectra and truth metadata are
synthesized for a requested target class and count.

2. Spectrum file writing.  The shared wavelength grid and the flux table
are written to a FITS file with WAVELENGTH and FLUX extensions.

3. Noise simulation.  The external "simulate" tool is run over the file,
optionally with moon illumination fraction, moon altitude, moon
separation and airmass, producing noisy three-band spectra.

4. Redshift fitting.  The external "fit-redshifts" tool is run over the
simulated spectra, producing a ZBEST results table.

5. Comparison.  Fitted redshifts are matched to truth, velocity offsets
dv = c (zfit - ztrue)/(1 + ztrue) are computed, summary statistics are
printed and scatter plots written.

Stages 3 and 4 repeat once per configured run, so the same input spectra
can be simulated dark and under bright moon and the results compared
side by side.

A failed stage halts the pipeline; there is no retry and no partial
result recovery.

Two companion commands cover the ends of the pipeline on their own:
mkspec generates templates and writes the simulator input file, zcomp
compares existing result files against a truth file.

Command line usage

Invoking specz with invalid arguments shows this usage prompt.

  Usage: specz [options]      run the simulate/fit pipeline
         specz -v             display version and copyright

  Options:
         -c <config-file>     YAML run configuration
         -p <path>            scratch directory (default $SCRATCH)
         -t <class>           target class (QSO ELG LRG BGS STD WD STAR)
         -n <count>           number of templates

Configuration

The -c option names a YAML file.  Keys and defaults:

  class: QSO          target class
  count: 10           number of templates
  seed: 0             random seed, 0 means seed from the clock
  repeatable: false   fixed seed for repeatable template sets
  zrange: [lo, hi]    restrict sampled redshifts within the class range
  magrange: [lo, hi]  restrict sampled magnitudes
  scratch: ""         working directory for generated files
  simulator: simulate        noise simulator executable
  fitter: fit-redshifts      redshift fitter executable
  mp: 0               fitter multiprocessing degree, 0 means tool default
  obscode: "695"      MPC observatory code for ephemeris-derived runs
  obscode_file: ""    obscode.dat path, fetched if unreadable
  plots: true         write scatter plots after comparison
  log: {level, encoding, development}
  runs:               one entry per simulate+fit pass
    - name: dark
    - name: moon
      conditions: {moonfrac: .9, moonalt: 70, moonsep: 20, airmass: 1.1}
    - name: mar04
      when: 2026-03-04T08:00:00Z
      target_ra: 150.1
      target_dec: 2.2

A run with explicit conditions passes them to the simulator.  A run
with a "when" timestamp instead derives moon fraction, altitude,
separation and target airmass from the lunar ephemeris for the
configured observatory.  A run with neither leaves all defaults to the
simulator.

Environment

  SCRATCH      working directory for generated files when no path is
               configured
  NERSC_HOST   when present, the fitter command is wrapped in a batch
               scheduler submission (srun)

Both external tools are located through PATH and inherit the parent
environment.

Files

All files are written under the scratch directory, named by class and
run.  For class qso and run moon:

  qso-templates.fits     simulator input, WAVELENGTH + FLUX extensions
  qso-truth.fits         TRUTH and TRUTH_TYPE binary tables
  qso-moon-spectra.fits  simulator output, per-band noisy spectra
  qso-moon-zbest.fits    fitter output, ZBEST binary table
  qso-zz.png, qso-dv.png comparison scatter plots

-------------
Public domain.
*/
package main
