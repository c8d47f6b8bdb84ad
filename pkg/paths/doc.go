// Package paths resolves the locations dotlink works with.
//
// It handles:
//
//   - Repository root discovery (DOTFILES_ROOT, git toplevel, working directory)
//   - Source paths: manifest names joined onto the repository root
//   - Destination expansion: environment variables, ~ and ~user, made absolute
//   - The manifest location, relative to the root unless absolute
//
// # Usage
//
//	p, err := paths.New("") // Auto-detect the repository root
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	src := p.SourcePath("bashrc")      // /home/user/dotfiles/bashrc
//	dst, err := p.Expand("~/.bashrc")  // /home/user/.bashrc
package paths
