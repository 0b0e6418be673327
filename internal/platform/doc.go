// Package platform provides the filesystem link capability the linker
// builds on, plus permission management. On Unix systems links are native
// relative symlinks. On Windows links use absolute targets and require
// developer mode (or elevation) for symlink creation.
package platform
